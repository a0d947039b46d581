// Defines the wire types exchanged with the remote simulation execution service:
// the request built from a form and identity, and the response carrying the
// execution log and task records.

package sim

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Identity names the learner a submission is attributed to.
type Identity struct {
	UserName string
	Email    string
}

// IdentityFromEmail derives an identity from a stored email address; the user
// name is the local part before '@' (the whole string when there is none).
func IdentityFromEmail(email string) Identity {
	email = strings.TrimSpace(email)
	name, _, _ := strings.Cut(email, "@")
	return Identity{UserName: name, Email: email}
}

// SimulationRequest is one submission body. Built fresh per submission and not
// modified after it is sent.
type SimulationRequest struct {
	Identity Identity
	Params   []Param
}

// NewSimulationRequest snapshots the form's current values for identity.
func NewSimulationRequest(id Identity, m *FormModel) *SimulationRequest {
	req := &SimulationRequest{Identity: id}
	if m != nil {
		req.Params = m.Params()
	}
	return req
}

// Body returns the flat request object: identity keys plus one key per parameter.
func (r *SimulationRequest) Body() map[string]any {
	body := make(map[string]any, len(r.Params)+2)
	for _, p := range r.Params {
		body[p.Field] = p.Value
	}
	body["userName"] = r.Identity.UserName
	body["email"] = r.Identity.Email
	return body
}

// MarshalJSON encodes the flat request object.
func (r *SimulationRequest) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.Body())
}

// SimulationResponse is the service's answer: the textual execution log and the
// ordered task records. Treated as immutable once received.
type SimulationResponse struct {
	Output string       `json:"simulation_output"`
	Tasks  []TaskRecord `json:"task_data"`
}

// TaskRecord is one unit of simulated work. Keys other than the ones modeled
// here are kept verbatim in Extra.
type TaskRecord struct {
	TaskID    string
	Host      string
	Type      string
	StartTime float64
	EndTime   float64
	Extra     map[string]json.RawMessage
}

// Duration returns EndTime - StartTime, or 0 for inverted intervals.
func (t TaskRecord) Duration() float64 {
	if t.EndTime < t.StartTime {
		return 0
	}
	return t.EndTime - t.StartTime
}

// UnmarshalJSON accepts camelCase and snake_case keys, and numeric or string task IDs.
func (t *TaskRecord) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw == nil {
		return fmt.Errorf("task record is null")
	}
	var rec TaskRecord
	for key, val := range raw {
		switch key {
		case "taskId", "task_id":
			rec.TaskID = rawString(val)
		case "host", "hostname":
			rec.Host = rawString(val)
		case "type":
			rec.Type = rawString(val)
		case "startTime", "start_time":
			rec.StartTime = rawNumber(val)
		case "endTime", "end_time":
			rec.EndTime = rawNumber(val)
		default:
			if rec.Extra == nil {
				rec.Extra = make(map[string]json.RawMessage)
			}
			rec.Extra[key] = val
		}
	}
	*t = rec
	return nil
}

// MarshalJSON writes the camelCase form plus Extra keys.
func (t TaskRecord) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(t.Extra)+5)
	for k, v := range t.Extra {
		out[k] = v
	}
	out["taskId"] = t.TaskID
	out["host"] = t.Host
	out["type"] = t.Type
	out["startTime"] = t.StartTime
	out["endTime"] = t.EndTime
	return json.Marshal(out)
}

func rawString(val json.RawMessage) string {
	var s string
	if err := json.Unmarshal(val, &s); err == nil {
		return s
	}
	text := strings.TrimSpace(string(val))
	if text == "null" {
		return ""
	}
	return text
}

func rawNumber(val json.RawMessage) float64 {
	var f float64
	if err := json.Unmarshal(val, &f); err == nil {
		return f
	}
	var s string
	if err := json.Unmarshal(val, &s); err == nil {
		if f, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
			return f
		}
	}
	return 0
}

// DecodeResponse parses a service response body. The returned response is always
// usable: anything that does not fit the expected shape degrades to empty values
// and is described by a *MalformedResponseError.
func DecodeResponse(body []byte) (*SimulationResponse, error) {
	resp := &SimulationResponse{Tasks: []TaskRecord{}}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return resp, &MalformedResponseError{Reason: "body is not a JSON object", Err: err}
	}

	var problems []string
	if out, ok := raw["simulation_output"]; !ok {
		problems = append(problems, "missing simulation_output")
	} else if err := json.Unmarshal(out, &resp.Output); err != nil {
		problems = append(problems, "simulation_output is not a string")
	}

	// Absent or null task_data is a valid empty result.
	if td, ok := raw["task_data"]; ok && strings.TrimSpace(string(td)) != "null" {
		var items []json.RawMessage
		if err := json.Unmarshal(td, &items); err != nil {
			problems = append(problems, "task_data is not an array")
		} else {
			skipped := 0
			for _, item := range items {
				var rec TaskRecord
				if err := json.Unmarshal(item, &rec); err != nil {
					skipped++
					continue
				}
				resp.Tasks = append(resp.Tasks, rec)
			}
			if skipped > 0 {
				problems = append(problems, fmt.Sprintf("%d task_data entries are not objects", skipped))
			}
		}
	}

	if len(problems) > 0 {
		return resp, &MalformedResponseError{Reason: strings.Join(problems, "; ")}
	}
	return resp, nil
}
