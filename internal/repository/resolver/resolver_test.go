package resolver

import (
	"context"
	"errors"
	"net"
	"reflect"
	"testing"
	"time"
)

func TestFilterIPv4(t *testing.T) {
	// lookups return a mix of families; only the IPv4 answers are kept
	addrs := []net.IPAddr{
		{IP: net.ParseIP("2001:db8::1")},
		{IP: net.ParseIP("fe80::1"), Zone: "eth0"},
		{IP: net.ParseIP("169.254.169.254")},
		{IP: net.ParseIP("::1")},
		{IP: net.IP{10, 0, 0, 1}},
	}

	expected := []net.IP{{169, 254, 169, 254}, {10, 0, 0, 1}}
	if got := FilterIPv4(addrs); !reflect.DeepEqual(got, expected) {
		t.Errorf("unexpected addresses, expected: %v, got: %v", expected, got)
	}

	if got := FilterIPv4([]net.IPAddr{{IP: net.ParseIP("2001:db8::2")}}); len(got) != 0 {
		t.Errorf("expected no address, got: %v", got)
	}
}

type countingResolver struct {
	calls int
	ips   []net.IP
	err   error
}

func (c *countingResolver) LookupIPv4(ctx context.Context, host string) ([]net.IP, error) {
	c.calls++
	return c.ips, c.err
}

func TestStaticLookup(t *testing.T) {
	fallback := &countingResolver{ips: []net.IP{{5, 5, 5, 5}}}
	r := NewStatic(map[string][]net.IP{
		"Test.com": {{169, 254, 169, 254}, {10, 0, 0, 1}},
	}, fallback)

	ips, err := r.LookupIPv4(context.Background(), "test.COM")
	if err != nil {
		t.Fatal(err)
	}

	expected := []net.IP{{169, 254, 169, 254}, {10, 0, 0, 1}}
	if !reflect.DeepEqual(ips, expected) {
		t.Errorf("unexpected addresses, expected: %v, got: %v", expected, ips)
	}

	// callers must not be able to alter the table
	ips[0][0] = 1
	again, _ := r.LookupIPv4(context.Background(), "test.com")
	if !again[0].Equal(net.IP{169, 254, 169, 254}) {
		t.Errorf("static table was modified through a lookup result: %v", again)
	}

	if fallback.calls != 0 {
		t.Errorf("expected no fallback lookup, got %d", fallback.calls)
	}

	ips, err = r.LookupIPv4(context.Background(), "other.com")
	if err != nil {
		t.Fatal(err)
	}
	if fallback.calls != 1 || !reflect.DeepEqual(ips, []net.IP{{5, 5, 5, 5}}) {
		t.Errorf("expected fallback answer, got %v (%d calls)", ips, fallback.calls)
	}
}

func TestStaticWithoutFallback(t *testing.T) {
	r := NewStatic(nil, nil)

	ips, err := r.LookupIPv4(context.Background(), "nonexistant.com")
	if err != nil || len(ips) != 0 {
		t.Errorf("expected empty answer, got %v, %v", ips, err)
	}
}

func TestParseStatic(t *testing.T) {
	r, err := ParseStatic([]string{"test.com=169.254.169.254,10.0.0.1", "api.test=1.1.1.1"}, nil)
	if err != nil {
		t.Fatal(err)
	}

	ips, _ := r.LookupIPv4(context.Background(), "test.com")
	if len(ips) != 2 || !ips[0].Equal(net.ParseIP("169.254.169.254")) {
		t.Errorf("unexpected addresses: %v", ips)
	}

	for _, entry := range []string{"test.com", "=1.1.1.1", "test.com=::1", "test.com=", "test.com=foo"} {
		if _, err := ParseStatic([]string{entry}, nil); err == nil {
			t.Errorf("expected error for entry [%s]", entry)
		}
	}
}

func TestParseStaticMergesCase(t *testing.T) {
	for i := 0; i < 50; i++ {
		r, err := ParseStatic([]string{"test.com=1.1.1.1", "TEST.com=10.0.0.1", "test.com.=2.2.2.2"}, nil)
		if err != nil {
			t.Fatal(err)
		}

		ips, _ := r.LookupIPv4(context.Background(), "Test.Com.")
		expected := []net.IP{{1, 1, 1, 1}, {10, 0, 0, 1}, {2, 2, 2, 2}}
		if !reflect.DeepEqual(ips, expected) {
			t.Fatalf("expected entries in flag order %v, got %v", expected, ips)
		}
	}

	// keys differing only by case merge in sorted key order
	for i := 0; i < 50; i++ {
		r := NewStatic(map[string][]net.IP{
			"test.com": {{1, 1, 1, 1}},
			"TEST.com": {{10, 0, 0, 1}},
		}, nil)

		ips, _ := r.LookupIPv4(context.Background(), "test.com")
		if !ips[0].Equal(net.IP{10, 0, 0, 1}) {
			t.Fatalf("expected a stable first address, got %v", ips)
		}
	}
}

func TestSystemLookupError(t *testing.T) {
	// nothing listens on the discard port; the lookup must fail with an
	// error rather than an empty answer
	r := NewSystem("127.0.0.1:9", 500*time.Millisecond)

	ips, err := r.LookupIPv4(context.Background(), "host.pinguard.test")
	if err == nil {
		t.Fatalf("expected lookup error, got %v", ips)
	}

	var dnsErr *net.DNSError
	if !errors.As(err, &dnsErr) {
		t.Errorf("expected a DNS error, got %T: %v", err, err)
	}
}
