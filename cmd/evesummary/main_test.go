package main

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/viant/afs"
)

const peakLog = `{"header":{"comment":"XANES","chains":{"1":{"preferredChannel":"tey"}}}}
{"kind":"moduleStart","chain":1,"module":"sm1","moduleKind":"scan"}
{"kind":"motor","chain":1,"name":"energy","posCount":1,"value":700,"unit":"eV"}
{"kind":"detector","chain":1,"name":"tey","posCount":1,"value":0,"unit":"nA"}
{"kind":"motor","chain":1,"name":"energy","posCount":2,"value":701,"unit":"eV"}
{"kind":"detector","chain":1,"name":"tey","posCount":2,"value":4,"unit":"nA"}
{"kind":"motor","chain":1,"name":"energy","posCount":3,"value":702,"unit":"eV"}
{"kind":"detector","chain":1,"name":"tey","posCount":3,"value":0,"unit":"nA"}
{"kind":"moduleEnd","chain":1,"module":"sm1"}
`

func TestRun(t *testing.T) {
	ctx := context.Background()
	fs := afs.New()
	first := "mem://localhost/evedata/evesummary/first.jsonl"
	second := "mem://localhost/evedata/evesummary/second.jsonl"
	for _, URL := range []string{first, second} {
		if !assert.Nil(t, fs.Upload(ctx, URL, 0644, strings.NewReader(peakLog))) {
			return
		}
	}
	var testCases = []struct {
		description string
		args        []string
		expect      []string
		expectErr   bool
	}{
		{description: "summary", args: []string{first}, expect: []string{"preferredChannel: tey", "fwhm: 1", "stepWidth: 1"}},
		{description: "comparison", args: []string{"-policy", "permissive", first, second}, expect: []string{"compatible: true", "xLabel: energy / eV"}},
		{description: "no files", args: []string{}, expectErr: true},
		{description: "bad policy", args: []string{"-policy", "lenient", first}, expectErr: true},
	}
	for _, testCase := range testCases {
		t.Run(testCase.description, func(t *testing.T) {
			out := &bytes.Buffer{}
			err := run(ctx, testCase.args, out)
			if testCase.expectErr {
				assert.NotNil(t, err)
				return
			}
			if !assert.Nil(t, err) {
				return
			}
			for _, expect := range testCase.expect {
				assert.Contains(t, out.String(), expect)
			}
		})
	}
}
