package simulation

import (
	"errors"
	"fmt"
	"time"

	"github.com/lao-tseu-is-alive/go-instance-flock/pkg/flock"
	"google.golang.org/protobuf/types/known/durationpb"
	"google.golang.org/protobuf/types/known/structpb"
)

// The actor speaks protobuf well known types:
//   - *durationpb.Duration is a tick, carrying the time elapsed since the previous one
//   - *structpb.Struct is a command, {"type": "pause"|"resume", "id": ...} or {"type": "params", "params": {...}}
// Commands are answered with a *structpb.Struct result, {"changed": bool, "code": string, "error": string}.

const (
	cmdPause  = "pause"
	cmdResume = "resume"
	cmdParams = "params"
)

// result codes, mapped back to sentinel errors by the engine
const (
	codeUnknownBoid   = "unknown_boid"
	codeInvalidParams = "invalid_params"
	codeBadCommand    = "bad_command"
)

var ErrBadCommand = errors.New("malformed command")

type command struct {
	kind   string
	id     string
	params flock.Params
}

func NewTick(elapsed time.Duration) *durationpb.Duration {
	return durationpb.New(elapsed)
}

func NewPauseCommand(id string) *structpb.Struct {
	return gateCommand(cmdPause, id)
}

func NewResumeCommand(id string) *structpb.Struct {
	return gateCommand(cmdResume, id)
}

func gateCommand(kind, id string) *structpb.Struct {
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		"type": structpb.NewStringValue(kind),
		"id":   structpb.NewStringValue(id),
	}}
}

func NewParamsCommand(p flock.Params) *structpb.Struct {
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		"type": structpb.NewStringValue(cmdParams),
		"params": structpb.NewStructValue(&structpb.Struct{Fields: map[string]*structpb.Value{
			"neighborRadius":   structpb.NewNumberValue(p.NeighborRadius),
			"separationWeight": structpb.NewNumberValue(p.SeparationWeight),
			"alignmentWeight":  structpb.NewNumberValue(p.AlignmentWeight),
			"cohesionWeight":   structpb.NewNumberValue(p.CohesionWeight),
			"maxForce":         structpb.NewNumberValue(p.MaxForce),
			"arrivalRadius":    structpb.NewNumberValue(p.ArrivalRadius),
			"minDistance":      structpb.NewNumberValue(p.MinDistance),
		}}),
	}}
}

func parseCommand(s *structpb.Struct) (command, error) {
	fields := s.GetFields()
	kind := fields["type"].GetStringValue()
	switch kind {
	case cmdPause, cmdResume:
		id := fields["id"].GetStringValue()
		if id == "" {
			return command{}, fmt.Errorf("%w: %s without id", ErrBadCommand, kind)
		}
		return command{kind: kind, id: id}, nil
	case cmdParams:
		ps := fields["params"].GetStructValue()
		if ps == nil {
			return command{}, fmt.Errorf("%w: params command without params", ErrBadCommand)
		}
		pf := ps.GetFields()
		num := func(name string) (float64, error) {
			v, ok := pf[name]
			if !ok {
				return 0, fmt.Errorf("%w: missing %s", ErrBadCommand, name)
			}
			if _, isNum := v.GetKind().(*structpb.Value_NumberValue); !isNum {
				return 0, fmt.Errorf("%w: %s is not a number", ErrBadCommand, name)
			}
			return v.GetNumberValue(), nil
		}
		var p flock.Params
		targets := []struct {
			name string
			dst  *float64
		}{
			{"neighborRadius", &p.NeighborRadius},
			{"separationWeight", &p.SeparationWeight},
			{"alignmentWeight", &p.AlignmentWeight},
			{"cohesionWeight", &p.CohesionWeight},
			{"maxForce", &p.MaxForce},
			{"arrivalRadius", &p.ArrivalRadius},
			{"minDistance", &p.MinDistance},
		}
		for _, t := range targets {
			v, err := num(t.name)
			if err != nil {
				return command{}, err
			}
			*t.dst = v
		}
		return command{kind: kind, params: p}, nil
	default:
		return command{}, fmt.Errorf("%w: unknown type %q", ErrBadCommand, kind)
	}
}

func newResult(changed bool, err error) *structpb.Struct {
	fields := map[string]*structpb.Value{
		"changed": structpb.NewBoolValue(changed),
	}
	if err != nil {
		code := codeBadCommand
		switch {
		case errors.Is(err, flock.ErrUnknownBoid):
			code = codeUnknownBoid
		case !errors.Is(err, ErrBadCommand):
			code = codeInvalidParams
		}
		fields["code"] = structpb.NewStringValue(code)
		fields["error"] = structpb.NewStringValue(err.Error())
	}
	return &structpb.Struct{Fields: fields}
}

// resultError rebuilds the error carried by a command result.
func resultError(res *structpb.Struct) (bool, error) {
	fields := res.GetFields()
	changed := fields["changed"].GetBoolValue()
	msg := fields["error"].GetStringValue()
	if msg == "" {
		return changed, nil
	}
	switch fields["code"].GetStringValue() {
	case codeUnknownBoid:
		return changed, fmt.Errorf("%w: %s", flock.ErrUnknownBoid, msg)
	case codeInvalidParams:
		return changed, fmt.Errorf("invalid params: %s", msg)
	default:
		return changed, fmt.Errorf("%w: %s", ErrBadCommand, msg)
	}
}
