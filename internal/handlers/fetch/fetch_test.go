package fetch

import (
	"bytes"
	"context"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/kondukto-io/pinguard/internal/core/domain"
	guardusecase "github.com/kondukto-io/pinguard/internal/core/usecase/guard"
	resolverrepo "github.com/kondukto-io/pinguard/internal/repository/resolver"
	"github.com/kondukto-io/pinguard/pkg/parser"
	"github.com/kondukto-io/pinguard/pkg/policy"
)

func newCommand(t *testing.T, out *bytes.Buffer, headers ...string) *cobra.Command {
	t.Helper()

	viper.Set(parser.KeyOutputFileName, filepath.Join(t.TempDir(), "pinguard.out"))
	t.Cleanup(func() { viper.Set(parser.KeyOutputFileName, "") })

	cmd := &cobra.Command{}
	cmd.Flags().String("method", http.MethodGet, "")
	cmd.Flags().StringArray("header", headers, "")
	cmd.Flags().Bool("print-body", true, "")
	cmd.SetContext(context.Background())
	cmd.SetOut(out)

	return cmd
}

func TestRun(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(r.Host + " " + r.Header.Get("X-Token")))
	}))
	defer server.Close()

	serverURL, _ := url.Parse(server.URL)
	port := serverURL.Port()

	table, err := policy.New(domain.PolicyConfig{DenyReserved: true, AllowLocalhost: true})
	if err != nil {
		t.Fatal(err)
	}

	uc := guardusecase.New(table, resolverrepo.NewStatic(map[string][]net.IP{
		"hook.test":   {{127, 0, 0, 1}},
		"rebind.test": {{169, 254, 169, 254}},
	}, nil), nil)

	var out bytes.Buffer
	if err := Run(newCommand(t, &out, "X-Token: abc"), []string{"http://hook.test:" + port + "/"}, uc); err != nil {
		t.Fatalf("expected fetch to succeed, got %v", err)
	}
	if out.String() != "hook.test:"+port+" abc" {
		t.Errorf("unexpected body: %q", out.String())
	}

	err = Run(newCommand(t, &out), []string{"http://rebind.test/latest/meta-data"}, uc)
	if !errors.Is(err, domain.ErrAddressNotAllowed) {
		t.Errorf("expected blocked request, got %v", err)
	}

	if err := Run(newCommand(t, &out), []string{"ftp://hook.test/"}, uc); err == nil {
		t.Errorf("expected unsupported scheme error")
	}

	if err := Run(newCommand(t, &out, "broken-header"), []string{"http://hook.test:" + port + "/"}, uc); err == nil {
		t.Errorf("expected invalid header error")
	}
}
