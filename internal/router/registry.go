// Package router decides which top-level view is mounted for a location and
// auth state, and keeps the location consistent with that decision.
package router

// Well-known paths.
const (
	LoginPath   = "/login"
	LandingPath = "/dashboard"
)

// View keys resolved by the UI layer.
const (
	ViewDashboard = "dashboard"
	ViewResource  = "resource"
	ViewProfile   = "profile"
)

// Entry is one addressable authenticated view.
type Entry struct {
	Path   string
	Name   string
	View   string
	Hidden bool
}

// Registry is the ordered list of authenticated views.
type Registry []Entry

// Lookup returns the entry registered for path.
func (r Registry) Lookup(path string) (Entry, bool) {
	path = Normalize(path)
	for _, e := range r {
		if e.Path == path {
			return e, true
		}
	}
	return Entry{}, false
}

// Visible returns the entries shown in navigation UI, in order.
func (r Registry) Visible() []Entry {
	out := make([]Entry, 0, len(r))
	for _, e := range r {
		if !e.Hidden {
			out = append(out, e)
		}
	}
	return out
}

// DefaultRegistry is the admin dashboard's navigation.
func DefaultRegistry() Registry {
	return Registry{
		{Path: "/dashboard", Name: "Dashboard", View: ViewDashboard},
		{Path: "/products", Name: "Products", View: ViewResource},
		{Path: "/categories", Name: "Categories", View: ViewResource},
		{Path: "/offers", Name: "Offers", View: ViewResource},
		{Path: "/sliders", Name: "Sliders", View: ViewResource},
		{Path: "/blogs", Name: "Blogs", View: ViewResource},
		{Path: "/orders", Name: "Orders", View: ViewResource},
		{Path: "/enquiries", Name: "Enquiries", View: ViewResource},
		{Path: "/mlm/referrals", Name: "Referrals", View: ViewResource},
		{Path: "/mlm/earnings", Name: "Earnings", View: ViewResource},
		{Path: "/mlm/withdrawals", Name: "Withdrawals", View: ViewResource},
		{Path: "/profile", Name: "Profile", View: ViewProfile, Hidden: true},
	}
}
