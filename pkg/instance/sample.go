package instance

import (
	"bytes"
	_ "embed"
)

//go:embed sample.json
var sampleJSON []byte

// Sample returns a small fixed instance list spread over three tenants,
// handy to run the flock without a dashboard to talk to.
func Sample() []Instance {
	list, err := Decode(bytes.NewReader(sampleJSON))
	if err != nil {
		panic("embedded sample instances are invalid: " + err.Error())
	}
	return list
}
