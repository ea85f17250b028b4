package tui

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/digicoders-git/ksadmin/internal/auth"
	"github.com/digicoders-git/ksadmin/pkg/client"
)

func TestTruncStr(t *testing.T) {
	tests := []struct {
		in   string
		max  int
		want string
	}{
		{"short", 10, "short"},
		{"exactly10!", 10, "exactly10!"},
		{"this is too long", 8, "this is…"},
		{"ऑक्सीमीटर", 3, "ऑक…"},
		{"x", 0, ""},
	}
	for _, tt := range tests {
		if got := truncStr(tt.in, tt.max); got != tt.want {
			t.Errorf("truncStr(%q, %d) = %q, want %q", tt.in, tt.max, got, tt.want)
		}
	}
}

func TestTruncateToHeight(t *testing.T) {
	s := "a\nb\nc\nd\n"
	if got := truncateToHeight(s, 2); got != "a\nb\n" {
		t.Errorf("truncateToHeight(2) = %q", got)
	}
	if got := truncateToHeight(s, 0); got != s {
		t.Errorf("truncateToHeight(0) = %q, want unchanged", got)
	}
	if got := truncateToHeight("a\nb", 5); got != "a\nb" {
		t.Errorf("truncateToHeight(5) = %q, want unchanged", got)
	}
}

func TestHumanize(t *testing.T) {
	tests := map[string]string{
		"createdAt":   "Created at",
		"order_total": "Order total",
		"totalOrders": "Total orders",
		"name":        "Name",
		"":            "",
	}
	for in, want := range tests {
		if got := humanize(in); got != want {
			t.Errorf("humanize(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestCompareValues(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"9", "10", -1},
		{"10", "9", 1},
		{"2.5", "2.5", 0},
		{"apple", "Banana", -1},
		{"b", "A", 1},
	}
	for _, tt := range tests {
		if got := compareValues(tt.a, tt.b); got != tt.want {
			t.Errorf("compareValues(%q, %q) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestPadRight(t *testing.T) {
	if got := padRight("ab", 5); got != "ab   " {
		t.Errorf("padRight = %q", got)
	}
	if got := padRight("abcdef", 3); got != "abcdef" {
		t.Errorf("padRight longer = %q", got)
	}
}

func TestFormatCounter(t *testing.T) {
	tests := []struct {
		in   any
		want string
	}{
		{float64(12), "12"},
		{12.5, "12.50"},
		{nil, "-"},
		{"n/a", "n/a"},
	}
	for _, tt := range tests {
		if got := formatCounter(tt.in); got != tt.want {
			t.Errorf("formatCounter(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestLoginErrorMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"401", &client.HTTPError{StatusCode: http.StatusUnauthorized}, "Invalid credentials."},
		{"400", &client.HTTPError{StatusCode: http.StatusBadRequest}, "Invalid credentials."},
		{"403 wrapped", fmt.Errorf("client.Login: %w", &client.HTTPError{StatusCode: http.StatusForbidden}), "Invalid credentials."},
		{"malformed", fmt.Errorf("client.Login: %w", client.ErrMalformedLogin), "Unexpected response from server."},
		{"missing token", auth.ErrMissingToken, "Unexpected response from server."},
		{"500", &client.HTTPError{StatusCode: http.StatusInternalServerError}, "Login failed (HTTP 500). Try again later."},
		{"network", errors.New("dial tcp: connection refused"), "Server unreachable. Check your connection."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := loginErrorMessage(tt.err); got != tt.want {
				t.Errorf("loginErrorMessage() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestStatusStyle(t *testing.T) {
	for _, s := range []string{"pending", "Delivered", "unknown-status"} {
		if rendered := StatusStyle(s).Render(s); !strings.Contains(rendered, s) {
			t.Errorf("StatusStyle(%q).Render = %q", s, rendered)
		}
	}
}

func TestHelpEntryFormat(t *testing.T) {
	result := helpEntry("q", "quit")
	if !strings.Contains(result, "q") || !strings.Contains(result, "quit") {
		t.Errorf("helpEntry(%q, %q) = %q, missing key or label", "q", "quit", result)
	}
}

func TestHelpViewListsLinks(t *testing.T) {
	items := []helpItem{{label: "Orders", desc: "http://x/orders", url: "http://x/orders"}}
	view := helpView(items, 0)
	if !strings.Contains(view, "Orders") || !strings.Contains(view, "> ") {
		t.Errorf("helpView missing selected link:\n%s", view)
	}
	if strings.Contains(helpView(nil, 0), "Web admin") {
		t.Error("helpView without links should omit the links section")
	}
}
