// Package v1 provides the REST API handlers for the employee sync service.
package v1

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/dsimmons122/employee-management/internal/store"
	"github.com/dsimmons122/employee-management/internal/sync"
	"github.com/dsimmons122/employee-management/internal/versions"
)

const (
	defaultPageSize = 50
	maxPageSize     = 200

	defaultHistoryLimit = 20
	maxHistoryLimit     = 100
)

// ErrorResponse represents a standardized error response
type ErrorResponse struct {
	Error string `json:"error"`
}

// TriggerSyncRequest is the body of POST /sync. Kind defaults to a full
// run when omitted.
type TriggerSyncRequest struct {
	Kind string `json:"kind"`
}

// TriggerSyncResponse acknowledges an accepted sync run.
type TriggerSyncResponse struct {
	RunID uuid.UUID `json:"run_id"`
	Kind  string    `json:"kind"`
}

// EmployeeResponse is the API view of an employee record.
type EmployeeResponse struct {
	ID                uuid.UUID  `json:"id"`
	ExternalID        string     `json:"external_id"`
	DisplayName       string     `json:"display_name"`
	Email             *string    `json:"email,omitempty"`
	ManagerExternalID *string    `json:"manager_external_id,omitempty"`
	EmploymentStatus  string     `json:"employment_status"`
	TerminationDate   *time.Time `json:"termination_date,omitempty"`
	LastSignInAt      *time.Time `json:"last_sign_in_at,omitempty"`
	LastSyncedAt      *time.Time `json:"last_synced_at,omitempty"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

// DeviceResponse is the API view of a device record.
type DeviceResponse struct {
	ID                 uuid.UUID  `json:"id"`
	DirectoryDeviceID  *string    `json:"directory_device_id,omitempty"`
	ManagementDeviceID *string    `json:"management_device_id,omitempty"`
	SerialNumber       string     `json:"serial_number"`
	Name               string     `json:"name"`
	Manufacturer       *string    `json:"manufacturer,omitempty"`
	Model              *string    `json:"model,omitempty"`
	OSName             *string    `json:"os_name,omitempty"`
	OSVersion          *string    `json:"os_version,omitempty"`
	LastSeenAt         *time.Time `json:"last_seen_at,omitempty"`
	EmployeeID         *uuid.UUID `json:"employee_id,omitempty"`
	Managed            bool       `json:"managed"`
	LastSyncedAt       *time.Time `json:"last_synced_at,omitempty"`
	UpdatedAt          time.Time  `json:"updated_at"`
}

// AssignmentResponse is one entry of a device's assignment history.
type AssignmentResponse struct {
	EmployeeID   uuid.UUID  `json:"employee_id"`
	AssignedAt   time.Time  `json:"assigned_at"`
	UnassignedAt *time.Time `json:"unassigned_at,omitempty"`
	RegisteredAt time.Time  `json:"registered_at"`
	IsCurrent    bool       `json:"is_current"`
}

// SoftwareResponse is one installed software item on a device.
type SoftwareResponse struct {
	Name           string     `json:"name"`
	NormalizedName string     `json:"normalized_name"`
	Version        string     `json:"version"`
	Vendor         *string    `json:"vendor,omitempty"`
	InstalledAt    *time.Time `json:"installed_at,omitempty"`
}

// Routes defines the routes for the sync API with dependency injection
type Routes struct {
	store        store.Store
	orchestrator *sync.Orchestrator
	reporter     *sync.Reporter
}

// NewRoutes creates a new Routes instance with the provided dependencies
func NewRoutes(s store.Store, orch *sync.Orchestrator, rep *sync.Reporter) *Routes {
	return &Routes{
		store:        s,
		orchestrator: orch,
		reporter:     rep,
	}
}

// Router creates a new router for the sync API
func Router(s store.Store, orch *sync.Orchestrator, rep *sync.Reporter) http.Handler {
	routes := NewRoutes(s, orch, rep)

	r := chi.NewRouter()

	// Sync control and status
	r.Post("/sync", routes.triggerSync)
	r.Get("/sync/runs", routes.listSyncRuns)
	r.Get("/sync/runs/{id}", routes.getSyncRun)

	// Reconciled inventory
	r.Get("/employees", routes.listEmployees)
	r.Get("/employees/{id}", routes.getEmployee)
	r.Get("/devices", routes.listDevices)
	r.Get("/devices/{id}", routes.getDevice)
	r.Get("/devices/{id}/assignments", routes.listDeviceAssignments)
	r.Get("/devices/{id}/software", routes.listDeviceSoftware)

	return r
}

// triggerSync handles POST /api/v1/sync. The run executes in the
// background; the response only acknowledges that it was started.
func (rr *Routes) triggerSync(w http.ResponseWriter, r *http.Request) {
	req := TriggerSyncRequest{Kind: string(store.RunKindFull)}
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			rr.writeErrorResponse(w, "Invalid request body", http.StatusBadRequest)
			return
		}
	}
	if req.Kind == "" {
		req.Kind = string(store.RunKindFull)
	}

	runID, err := rr.orchestrator.TriggerSync(r.Context(), store.RunKind(req.Kind))
	if err != nil {
		rr.writeErrorResponse(w, "Unknown sync kind: "+req.Kind, http.StatusBadRequest)
		return
	}

	rr.writeJSONResponseStatus(w, TriggerSyncResponse{RunID: runID, Kind: req.Kind}, http.StatusAccepted)
}

// getSyncRun handles GET /api/v1/sync/runs/{id}
func (rr *Routes) getSyncRun(w http.ResponseWriter, r *http.Request) {
	id, ok := rr.parseID(w, r)
	if !ok {
		return
	}

	report, err := rr.reporter.GetStatus(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			rr.writeErrorResponse(w, "Sync run not found", http.StatusNotFound)
			return
		}
		slog.ErrorContext(r.Context(), "failed to get sync run", "run_id", id, "error", err)
		rr.writeErrorResponse(w, "Failed to get sync run", http.StatusInternalServerError)
		return
	}

	rr.writeJSONResponse(w, report)
}

// listSyncRuns handles GET /api/v1/sync/runs
func (rr *Routes) listSyncRuns(w http.ResponseWriter, r *http.Request) {
	limit := parseBoundedInt(r.URL.Query().Get("limit"), defaultHistoryLimit, maxHistoryLimit)

	reports, err := rr.reporter.ListHistory(r.Context(), limit)
	if err != nil {
		slog.ErrorContext(r.Context(), "failed to list sync runs", "error", err)
		rr.writeErrorResponse(w, "Failed to list sync runs", http.StatusInternalServerError)
		return
	}

	rr.writeJSONResponse(w, map[string][]sync.StatusReport{"runs": reports})
}

// listEmployees handles GET /api/v1/employees
func (rr *Routes) listEmployees(w http.ResponseWriter, r *http.Request) {
	limit, offset := parsePage(r)

	emps, err := rr.store.ListEmployees(r.Context(), limit, offset)
	if err != nil {
		slog.ErrorContext(r.Context(), "failed to list employees", "error", err)
		rr.writeErrorResponse(w, "Failed to list employees", http.StatusInternalServerError)
		return
	}

	out := make([]EmployeeResponse, len(emps))
	for i, emp := range emps {
		out[i] = employeeResponse(emp)
	}
	rr.writeJSONResponse(w, map[string][]EmployeeResponse{"employees": out})
}

// getEmployee handles GET /api/v1/employees/{id}
func (rr *Routes) getEmployee(w http.ResponseWriter, r *http.Request) {
	id, ok := rr.parseID(w, r)
	if !ok {
		return
	}

	emp, err := rr.store.GetEmployee(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			rr.writeErrorResponse(w, "Employee not found", http.StatusNotFound)
			return
		}
		slog.ErrorContext(r.Context(), "failed to get employee", "employee_id", id, "error", err)
		rr.writeErrorResponse(w, "Failed to get employee", http.StatusInternalServerError)
		return
	}

	rr.writeJSONResponse(w, employeeResponse(emp))
}

// listDevices handles GET /api/v1/devices
func (rr *Routes) listDevices(w http.ResponseWriter, r *http.Request) {
	limit, offset := parsePage(r)

	devs, err := rr.store.ListDevices(r.Context(), limit, offset)
	if err != nil {
		slog.ErrorContext(r.Context(), "failed to list devices", "error", err)
		rr.writeErrorResponse(w, "Failed to list devices", http.StatusInternalServerError)
		return
	}

	out := make([]DeviceResponse, len(devs))
	for i, dev := range devs {
		out[i] = deviceResponse(dev)
	}
	rr.writeJSONResponse(w, map[string][]DeviceResponse{"devices": out})
}

// getDevice handles GET /api/v1/devices/{id}
func (rr *Routes) getDevice(w http.ResponseWriter, r *http.Request) {
	id, ok := rr.parseID(w, r)
	if !ok {
		return
	}

	dev, err := rr.store.GetDevice(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			rr.writeErrorResponse(w, "Device not found", http.StatusNotFound)
			return
		}
		slog.ErrorContext(r.Context(), "failed to get device", "device_id", id, "error", err)
		rr.writeErrorResponse(w, "Failed to get device", http.StatusInternalServerError)
		return
	}

	rr.writeJSONResponse(w, deviceResponse(dev))
}

// listDeviceAssignments handles GET /api/v1/devices/{id}/assignments
func (rr *Routes) listDeviceAssignments(w http.ResponseWriter, r *http.Request) {
	id, ok := rr.parseID(w, r)
	if !ok {
		return
	}

	if _, err := rr.store.GetDevice(r.Context(), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			rr.writeErrorResponse(w, "Device not found", http.StatusNotFound)
			return
		}
		slog.ErrorContext(r.Context(), "failed to get device", "device_id", id, "error", err)
		rr.writeErrorResponse(w, "Failed to get device", http.StatusInternalServerError)
		return
	}

	entries, err := rr.store.ListAssignmentsForDevice(r.Context(), id)
	if err != nil {
		slog.ErrorContext(r.Context(), "failed to list assignments", "device_id", id, "error", err)
		rr.writeErrorResponse(w, "Failed to list assignment history", http.StatusInternalServerError)
		return
	}

	out := make([]AssignmentResponse, len(entries))
	for i, entry := range entries {
		out[i] = AssignmentResponse{
			EmployeeID:   entry.EmployeeID,
			AssignedAt:   entry.AssignedAt,
			UnassignedAt: entry.UnassignedAt,
			RegisteredAt: entry.RegisteredAt,
			IsCurrent:    entry.IsCurrent,
		}
	}
	// Current assignment first, then most recent history.
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].IsCurrent != out[j].IsCurrent {
			return out[i].IsCurrent
		}
		return out[i].AssignedAt.After(out[j].AssignedAt)
	})
	rr.writeJSONResponse(w, map[string][]AssignmentResponse{"assignments": out})
}

// listDeviceSoftware handles GET /api/v1/devices/{id}/software
func (rr *Routes) listDeviceSoftware(w http.ResponseWriter, r *http.Request) {
	id, ok := rr.parseID(w, r)
	if !ok {
		return
	}

	if _, err := rr.store.GetDevice(r.Context(), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			rr.writeErrorResponse(w, "Device not found", http.StatusNotFound)
			return
		}
		slog.ErrorContext(r.Context(), "failed to get device", "device_id", id, "error", err)
		rr.writeErrorResponse(w, "Failed to get device", http.StatusInternalServerError)
		return
	}

	installed, err := rr.store.ListSoftwareForDevice(r.Context(), id)
	if err != nil {
		slog.ErrorContext(r.Context(), "failed to list software", "device_id", id, "error", err)
		rr.writeErrorResponse(w, "Failed to list software inventory", http.StatusInternalServerError)
		return
	}

	out := make([]SoftwareResponse, len(installed))
	for i, item := range installed {
		out[i] = SoftwareResponse{
			Name:           item.Software.Name,
			NormalizedName: item.Software.NormalizedName,
			Version:        item.Software.Version,
			Vendor:         item.Software.Vendor,
			InstalledAt:    item.InstalledAt,
		}
	}
	// Group by normalized name, newest version first within each group.
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].NormalizedName != out[j].NormalizedName {
			return out[i].NormalizedName < out[j].NormalizedName
		}
		return versions.IsNewerVersion(out[i].Version, out[j].Version)
	})
	rr.writeJSONResponse(w, map[string][]SoftwareResponse{"software": out})
}

func employeeResponse(emp store.Employee) EmployeeResponse {
	return EmployeeResponse{
		ID:                emp.ID,
		ExternalID:        emp.ExternalID,
		DisplayName:       emp.DisplayName,
		Email:             emp.Email,
		ManagerExternalID: emp.ManagerExternalID,
		EmploymentStatus:  string(emp.EmploymentStatus),
		TerminationDate:   emp.TerminationDate,
		LastSignInAt:      emp.LastSignInAt,
		LastSyncedAt:      emp.LastSyncedAt,
		UpdatedAt:         emp.UpdatedAt,
	}
}

func deviceResponse(dev store.Device) DeviceResponse {
	return DeviceResponse{
		ID:                 dev.ID,
		DirectoryDeviceID:  dev.DirectoryDeviceID,
		ManagementDeviceID: dev.ManagementDeviceID,
		SerialNumber:       dev.SerialNumber,
		Name:               dev.Name,
		Manufacturer:       dev.Manufacturer,
		Model:              dev.Model,
		OSName:             dev.OSName,
		OSVersion:          dev.OSVersion,
		LastSeenAt:         dev.LastSeenAt,
		EmployeeID:         dev.EmployeeID,
		Managed:            dev.Managed,
		LastSyncedAt:       dev.LastSyncedAt,
		UpdatedAt:          dev.UpdatedAt,
	}
}

// parseID reads the {id} route parameter; on failure it writes the 400
// response itself and returns ok=false.
func (rr *Routes) parseID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		rr.writeErrorResponse(w, "Invalid id: must be a UUID", http.StatusBadRequest)
		return uuid.Nil, false
	}
	return id, true
}

func parsePage(r *http.Request) (limit, offset int32) {
	q := r.URL.Query()
	limit = parseBoundedInt(q.Get("limit"), defaultPageSize, maxPageSize)
	if v, err := strconv.ParseInt(q.Get("offset"), 10, 32); err == nil && v > 0 {
		offset = int32(v)
	}
	return limit, offset
}

func parseBoundedInt(raw string, def, max int32) int32 {
	v, err := strconv.ParseInt(raw, 10, 32)
	if err != nil || v <= 0 {
		return def
	}
	if int32(v) > max {
		return max
	}
	return int32(v)
}

// writeJSONResponse writes a JSON response with the given data
func (rr *Routes) writeJSONResponse(w http.ResponseWriter, data any) {
	rr.writeJSONResponseStatus(w, data, http.StatusOK)
}

func (*Routes) writeJSONResponseStatus(w http.ResponseWriter, data any, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("failed to encode JSON response", "error", err)
	}
}

// writeErrorResponse writes a standardized error response
func (*Routes) writeErrorResponse(w http.ResponseWriter, message string, statusCode int) {
	errorResp := ErrorResponse{
		Error: message,
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(errorResp); err != nil {
		slog.Error("failed to encode error response", "error", err)
	}
}
