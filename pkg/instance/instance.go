package instance

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"io"

	"github.com/lao-tseu-is-alive/go-instance-flock/pkg/flock"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

// Flavor is the sizing of a server. RAM is in MB.
type Flavor struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	VCPUs float64 `json:"vcpus"`
	RAM   float64 `json:"ram"`
}

// Tenant is the project owning the server; its id groups boids by colour.
type Tenant struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// User is the server owner.
type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
}

// Instance is one compute server as reported by the dashboard endpoint.
// It implements flock.Payload.
type Instance struct {
	ServerID string `json:"id"`
	Name     string `json:"name"`
	Status   string `json:"status,omitempty"`
	Host     string `json:"OS-EXT-SRV-ATTR:host,omitempty"`
	Flavor   Flavor `json:"flavor"`
	Tenant   Tenant `json:"tenant"`
	User     User   `json:"user"`
}

func (i Instance) ID() string      { return i.ServerID }
func (i Instance) GroupID() string { return i.Tenant.ID }

// MaxSpeed maps compute capacity to speed: half a pixel per tick per VCPU.
func (i Instance) MaxSpeed() float64 {
	return i.Flavor.VCPUs / 2
}

// DesiredSeparation maps memory to personal space: one pixel per 16 MB, plus 2.
func (i Instance) DesiredSeparation() float64 {
	return i.Flavor.RAM/16 + 2
}

// Tooltip returns the lines shown when the instance is hovered.
func (i Instance) Tooltip() []string {
	return []string{
		i.Name,
		"Host: " + i.Host,
		"Project: " + i.Tenant.Name,
		"User: " + i.User.Name,
		fmt.Sprintf("VCPUs: %g", i.Flavor.VCPUs),
		fmt.Sprintf("RAM: %g MB", i.Flavor.RAM),
	}
}

//go:embed instances.schema.json
var schemaJSON string

var schema = jsonschema.MustCompileString("instances.schema.json", schemaJSON)

// Decode reads a JSON array of instances, validates it against the instance
// list schema and unmarshals it.
func Decode(r io.Reader) ([]Instance, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read instances: %w", err)
	}

	var v interface{}
	if err := json.Unmarshal(b, &v); err != nil {
		return nil, fmt.Errorf("failed to decode instances json: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return nil, fmt.Errorf("instances validation failed: %w", err)
	}

	var list []Instance
	if err := json.Unmarshal(b, &list); err != nil {
		return nil, fmt.Errorf("failed to unmarshal instances: %w", err)
	}
	return list, nil
}

// Payloads adapts a list of instances for flock.Spawn.
func Payloads(list []Instance) []flock.Payload {
	out := make([]flock.Payload, len(list))
	for i, inst := range list {
		out[i] = inst
	}
	return out
}
