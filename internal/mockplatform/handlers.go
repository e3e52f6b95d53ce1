package mockplatform

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

func (p *Platform) issueToken(w http.ResponseWriter, r *http.Request) {
	id, secret, ok := r.BasicAuth()
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid_client", "error_description": "missing basic authentication"})
		return
	}
	if !strings.HasPrefix(r.Header.Get("Content-Type"), "application/x-www-form-urlencoded") {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid_request", "error_description": "form encoding required"})
		return
	}
	if err := r.ParseForm(); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid_request", "error_description": err.Error()})
		return
	}
	if r.PostForm.Get("grant_type") != "client_credentials" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "unsupported_grant_type"})
		return
	}

	p.mu.Lock()
	want, known := p.clients[id]
	p.mu.Unlock()
	if !known || want != secret {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid_client", "error_description": "bad client credentials"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"access_token": p.IssueToken(),
		"token_type":   "bearer",
		"expires_in":   3600,
		"scope":        r.PostForm.Get("scope"),
	})
}

func (p *Platform) authorize(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if p.requireToken {
			token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			p.mu.Lock()
			_, valid := p.tokens[token]
			p.mu.Unlock()
			if !ok || !valid {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

func pathParam(r *http.Request, key string) string {
	v := chi.URLParam(r, key)
	if unescaped, err := url.PathUnescape(v); err == nil {
		return unescaped
	}
	return v
}

// ============================================================================
// Device management
// ============================================================================

func (p *Platform) listDataTypes(w http.ResponseWriter, _ *http.Request) {
	p.mu.Lock()
	defer p.mu.Unlock()
	writeJSON(w, http.StatusOK, p.dataTypes)
}

func (p *Platform) listDeviceTypes(w http.ResponseWriter, _ *http.Request) {
	p.mu.Lock()
	defer p.mu.Unlock()
	writeJSON(w, http.StatusOK, append([]DeviceType{}, p.deviceTypes...))
}

func (p *Platform) addDeviceType(w http.ResponseWriter, r *http.Request) {
	var in DeviceType
	if err := decodeBody(r, &in); err != nil {
		writeErrors(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	if in.Name == "" {
		writeErrors(w, http.StatusBadRequest, "name is required")
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	for _, dt := range p.deviceTypes {
		if dt.Name == in.Name {
			writeErrors(w, http.StatusConflict, fmt.Sprintf("device type %q already exists", in.Name))
			return
		}
	}
	dt := DeviceType{ID: uuid.NewString(), Name: in.Name, Token: uuid.NewString()}
	p.deviceTypes = append(p.deviceTypes, dt)
	writeJSON(w, http.StatusOK, dt)
}

func (p *Platform) deleteDeviceType(w http.ResponseWriter, r *http.Request) {
	id := pathParam(r, "id")

	p.mu.Lock()
	defer p.mu.Unlock()
	var blockers []string
	for _, d := range p.devices {
		if d.DeviceType == id {
			blockers = append(blockers, fmt.Sprintf("device %s still uses device type %s", d.ID, id))
		}
	}
	if len(blockers) > 0 {
		writeErrors(w, http.StatusConflict, blockers...)
		return
	}
	for i, dt := range p.deviceTypes {
		if dt.ID == id {
			p.deviceTypes = append(p.deviceTypes[:i], p.deviceTypes[i+1:]...)
			w.WriteHeader(http.StatusNoContent)
			return
		}
	}
	writeErrors(w, http.StatusNotFound, fmt.Sprintf("device type %s not found", id))
}

func (p *Platform) listMessageTypes(w http.ResponseWriter, _ *http.Request) {
	p.mu.Lock()
	defer p.mu.Unlock()
	writeJSON(w, http.StatusOK, append([]MessageType{}, p.messageTypes...))
}

func (p *Platform) addMessageType(w http.ResponseWriter, r *http.Request) {
	var in MessageType
	if err := decodeBody(r, &in); err != nil {
		writeErrors(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}

	var problems []string
	if in.Name == "" {
		problems = append(problems, "name is required")
	}
	if in.Fields == nil {
		problems = append(problems, "fields are required")
	}
	for i, f := range in.Fields {
		if f.Position != i+1 {
			problems = append(problems, fmt.Sprintf("field %d has position %d", i, f.Position))
		}
		if f.Name == "" || f.Type == "" {
			problems = append(problems, fmt.Sprintf("field %d needs a name and a type", i))
		}
	}
	if len(problems) > 0 {
		writeErrors(w, http.StatusBadRequest, problems...)
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	in.ID = uuid.NewString()
	p.messageTypes = append(p.messageTypes, in)
	writeJSON(w, http.StatusOK, in)
}

func (p *Platform) deleteMessageType(w http.ResponseWriter, r *http.Request) {
	id := pathParam(r, "id")

	p.mu.Lock()
	defer p.mu.Unlock()
	for i, mt := range p.messageTypes {
		if mt.ID == id {
			p.messageTypes = append(p.messageTypes[:i], p.messageTypes[i+1:]...)
			w.WriteHeader(http.StatusNoContent)
			return
		}
	}
	writeErrors(w, http.StatusNotFound, fmt.Sprintf("message type %s not found", id))
}

func (p *Platform) listDevices(w http.ResponseWriter, _ *http.Request) {
	p.mu.Lock()
	defer p.mu.Unlock()
	writeJSON(w, http.StatusOK, append([]Device{}, p.devices...))
}

func (p *Platform) addDevice(w http.ResponseWriter, r *http.Request) {
	var in Device
	if err := decodeBody(r, &in); err != nil {
		writeErrors(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.hasDeviceType(in.DeviceType) {
		writeErrors(w, http.StatusBadRequest, fmt.Sprintf("device type %s does not exist", in.DeviceType))
		return
	}
	d := Device{ID: uuid.NewString(), Name: in.Name, DeviceType: in.DeviceType}
	p.devices = append(p.devices, d)
	writeJSON(w, http.StatusOK, d)
}

func (p *Platform) deleteDevice(w http.ResponseWriter, r *http.Request) {
	id := pathParam(r, "id")

	p.mu.Lock()
	defer p.mu.Unlock()
	for i, d := range p.devices {
		if d.ID == id {
			p.devices = append(p.devices[:i], p.devices[i+1:]...)
			delete(p.uploads, id)
			delete(p.outbox, id)
			w.WriteHeader(http.StatusNoContent)
			return
		}
	}
	writeErrors(w, http.StatusNotFound, fmt.Sprintf("device %s not found", id))
}

func (p *Platform) hasDeviceType(id string) bool {
	for _, dt := range p.deviceTypes {
		if dt.ID == id {
			return true
		}
	}
	return false
}

func (p *Platform) hasDevice(id string) bool {
	for _, d := range p.devices {
		if d.ID == id {
			return true
		}
	}
	return false
}

func (p *Platform) hasMessageType(id string) bool {
	for _, mt := range p.messageTypes {
		if mt.ID == id {
			return true
		}
	}
	return false
}

// ============================================================================
// Message management
// ============================================================================

func (p *Platform) getConfig(w http.ResponseWriter, _ *http.Request) {
	p.mu.Lock()
	defer p.mu.Unlock()
	writeJSON(w, http.StatusOK, p.config)
}

func (p *Platform) putConfig(w http.ResponseWriter, r *http.Request) {
	var in map[string]any
	if err := decodeBody(r, &in); err != nil {
		// Non-JSON bodies get a plain-text answer, the way the real service does.
		http.Error(w, "config must be a JSON object", http.StatusBadRequest)
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	for k, v := range in {
		p.config[k] = v
	}
	writeJSON(w, http.StatusOK, p.config)
}

func (p *Platform) putProcessing(w http.ResponseWriter, r *http.Request) {
	var in Processing
	if err := decodeBody(r, &in); err != nil {
		writeErrors(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	if len(in.ProcessingServices) == 0 {
		writeErrors(w, http.StatusBadRequest, "processingServices are required")
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.mappings = append(p.mappings, in)
	w.WriteHeader(http.StatusNoContent)
}

func (p *Platform) getData(w http.ResponseWriter, r *http.Request) {
	device := pathParam(r, "device")

	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.hasDevice(device) {
		writeErrors(w, http.StatusNotFound, fmt.Sprintf("device %s not found", device))
		return
	}
	pending := append([]Push{}, p.outbox[device]...)
	delete(p.outbox, device)
	writeJSON(w, http.StatusOK, pending)
}

func (p *Platform) postData(w http.ResponseWriter, r *http.Request) {
	device := pathParam(r, "device")
	var in Upload
	if err := decodeBody(r, &in); err != nil {
		writeErrors(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.hasDevice(device) {
		writeErrors(w, http.StatusNotFound, fmt.Sprintf("device %s not found", device))
		return
	}
	if !p.hasMessageType(in.MessageType) {
		writeErrors(w, http.StatusBadRequest, fmt.Sprintf("message type %s does not exist", in.MessageType))
		return
	}
	var messages []json.RawMessage
	if err := json.Unmarshal(in.Messages, &messages); err != nil {
		writeErrors(w, http.StatusBadRequest, "messages must be a list")
		return
	}
	p.uploads[device] = append(p.uploads[device], in)

	status := http.StatusOK
	if in.Mode == "async" || in.Mode == "async-ack" {
		status = http.StatusAccepted
	}
	writeJSON(w, status, map[string]any{"msg": fmt.Sprintf("%d messages consumed", len(messages))})
}

func (p *Platform) pushData(w http.ResponseWriter, r *http.Request) {
	device := pathParam(r, "device")
	var in Push
	if err := decodeBody(r, &in); err != nil {
		writeErrors(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	if in.Method != "http" && in.Method != "ws" {
		writeErrors(w, http.StatusBadRequest, fmt.Sprintf("unsupported push method %q", in.Method))
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.hasDevice(device) {
		writeErrors(w, http.StatusNotFound, fmt.Sprintf("device %s not found", device))
		return
	}
	p.outbox[device] = append(p.outbox[device], in)
	writeJSON(w, http.StatusOK, map[string]any{"msg": "message pushed"})
}
