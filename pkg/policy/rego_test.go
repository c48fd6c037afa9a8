package policy

import (
	"context"
	"testing"
	"testing/fstest"

	"github.com/kondukto-io/pinguard/bundle"
	"github.com/kondukto-io/pinguard/internal/core/domain"
)

var regoCases = map[string]struct {
	data     []byte
	input    []byte
	expected bool
}{
	"no_data": {
		nil,
		[]byte(`{"scheme": "http", "host": "metadata.internal", "address": "10.0.0.1", "port": 80, "literal": false}`),
		true,
	},
	"denied_host_glob": {
		[]byte(`{"denied_hosts": ["*.internal"]}`),
		[]byte(`{"scheme": "http", "host": "metadata.internal", "address": "10.0.0.1", "port": 80, "literal": false}`),
		false,
	},
	"denied_host_case_insensitive": {
		[]byte(`{"denied_hosts": ["Metadata.Google.Internal"]}`),
		[]byte(`{"scheme": "http", "host": "metadata.google.internal", "address": "169.254.169.254", "port": 80, "literal": false}`),
		false,
	},
	"denied_host_trailing_dot": {
		[]byte(`{"denied_hosts": ["metadata.google.internal"]}`),
		[]byte(`{"scheme": "http", "host": "metadata.google.internal.", "address": "169.254.169.254", "port": 80, "literal": false}`),
		false,
	},
	"glob_does_not_cross_labels": {
		[]byte(`{"denied_hosts": ["*.internal"]}`),
		[]byte(`{"scheme": "https", "host": "a.b.internal", "address": "10.0.0.1", "port": 443, "literal": false}`),
		true,
	},
	"other_host": {
		[]byte(`{"denied_hosts": ["*.internal"]}`),
		[]byte(`{"scheme": "https", "host": "example.com", "address": "93.184.216.34", "port": 443, "literal": false}`),
		true,
	},
	"denied_literal": {
		[]byte(`{"denied_hosts": ["169.254.169.254"]}`),
		[]byte(`{"scheme": "http", "host": "169.254.169.254", "address": "169.254.169.254", "port": 80, "literal": true}`),
		false,
	},
}

func TestHostRulesEval(t *testing.T) {
	for name, test := range regoCases {
		p, err := NewHostRules(bundle.Bundle, test.data)
		if err != nil {
			t.Fatalf("[%s] policy init error: %v", name, err)
		}
		p.AddQuery(DefaultQuery)

		result, err := p.Eval(context.Background(), test.input)
		if err != nil {
			t.Fatalf("[%s] eval error: %v", name, err)
		}

		if result != test.expected {
			t.Errorf("[%s] expected policy status '%v', got %v", name, test.expected, result)
		}
	}
}

func TestHostRulesAllowTarget(t *testing.T) {
	p, err := NewHostRules(bundle.Bundle, []byte(`{"denied_hosts": ["*.corp"]}`))
	if err != nil {
		t.Fatal(err)
	}

	if err := p.Prepare(context.Background()); err != nil {
		t.Fatal(err)
	}

	ok, err := p.AllowTarget(context.Background(), domain.HostRulesInput{
		Scheme: "http", Host: "wiki.corp", Address: "10.1.1.1", Port: 80,
	})
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Errorf("expected wiki.corp to be denied")
	}
}

func TestNewHostRulesErrors(t *testing.T) {
	if _, err := NewHostRules(fstest.MapFS{}, nil); err == nil {
		t.Errorf("expected error for an empty bundle")
	}

	if _, err := NewHostRules(bundle.Bundle, []byte(`{"denied_hosts": [`)); err == nil {
		t.Errorf("expected error for malformed data")
	}

	broken := fstest.MapFS{"broken.rego": &fstest.MapFile{Data: []byte("package broken\n\nallow := ")}}
	p, err := NewHostRules(broken, nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := p.Prepare(context.Background()); err == nil {
		t.Errorf("expected compile error for a broken module")
	}
}
