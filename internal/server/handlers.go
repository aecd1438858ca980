package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gur-shatz/empdir/internal/store"
)

const healthTimeout = 2 * time.Second

type employeeForm struct {
	ID           string `form:"emp_id"        validate:"required"`
	FirstName    string `form:"first_name"    validate:"required"`
	LastName     string `form:"last_name"     validate:"required"`
	PrimarySkill string `form:"primary_skill" validate:"required"`
	Location     string `form:"location"      validate:"required"`
}

type lookupForm struct {
	ID string `form:"emp_id" validate:"required"`
}

// errorPage is the data for error.html.
type errorPage struct {
	Title   string
	Message string
	Fields  []string
}

func (this *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	this.render(w, r, http.StatusOK, "addemp.html", nil)
}

func (this *Server) handleAbout(w http.ResponseWriter, r *http.Request) {
	this.render(w, r, http.StatusOK, "about.html", nil)
}

func (this *Server) handleGetEmployeeForm(w http.ResponseWriter, r *http.Request) {
	this.render(w, r, http.StatusOK, "getemp.html", nil)
}

func (this *Server) handleAddEmployee(w http.ResponseWriter, r *http.Request) {
	var form employeeForm
	if !this.bindForm(w, r, &form) {
		return
	}

	name, err := this.dir.AddEmployee(r.Context(), store.Employee{
		ID:           form.ID,
		FirstName:    form.FirstName,
		LastName:     form.LastName,
		PrimarySkill: form.PrimarySkill,
		Location:     form.Location,
	})
	if err != nil {
		this.metrics.StoreErrors.WithLabelValues("add").Inc()
		this.log.Error("add employee: %v", err)
		this.render(w, r, http.StatusInternalServerError, "error.html", errorPage{
			Title:   "Could not add employee",
			Message: "The employee could not be saved. Please try again.",
		})
		return
	}

	this.metrics.EmployeesAdded.Inc()
	this.log.Verbose("Added employee %s (%s)", form.ID, name)
	this.render(w, r, http.StatusOK, "addempoutput.html", map[string]string{"Name": name})
}

func (this *Server) handleFetchData(w http.ResponseWriter, r *http.Request) {
	var form lookupForm
	if !this.bindForm(w, r, &form) {
		return
	}

	emp, err := this.dir.GetEmployee(r.Context(), form.ID)
	switch {
	case errors.Is(err, store.ErrNotFound):
		this.metrics.EmployeeLookups.WithLabelValues("not_found").Inc()
		this.render(w, r, http.StatusNotFound, "notfound.html", map[string]string{"ID": form.ID})
	case err != nil:
		this.metrics.EmployeeLookups.WithLabelValues("error").Inc()
		this.metrics.StoreErrors.WithLabelValues("get").Inc()
		this.log.Error("fetch employee: %v", err)
		this.render(w, r, http.StatusInternalServerError, "error.html", errorPage{
			Title:   "Lookup failed",
			Message: "The employee could not be loaded. Please try again.",
		})
	default:
		this.metrics.EmployeeLookups.WithLabelValues("found").Inc()
		this.render(w, r, http.StatusOK, "getempoutput.html", emp)
	}
}

func (this *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
	defer cancel()

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	if err := this.dir.Ping(ctx); err != nil {
		this.log.Warn("health check: %v", err)
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte("database unavailable\n"))
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok\n"))
}

// render writes a page, falling back to a plain 500 if the template fails.
func (this *Server) render(w http.ResponseWriter, r *http.Request, status int, page string, data any) {
	if err := this.views.Render(w, r, status, page, data); err != nil {
		this.log.Error("%v", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}
