// Package guard decides whether a navigation to a route is allowed for the
// current session. Resolve is pure: it does no I/O and never blocks.
package guard

// RouteName identifies a screen of the client.
type RouteName string

const (
	Home          RouteName = "home"
	Login         RouteName = "login"
	Register      RouteName = "register"
	Generate      RouteName = "generate"
	History       RouteName = "history"
	Admin         RouteName = "admin"
	BuyCredits    RouteName = "buyCredits"
	PaymentResult RouteName = "paymentResult"
)

// Route is the access policy of one screen.
type Route struct {
	Name          RouteName
	RequiresAuth  bool
	RequiresAdmin bool
}

var routes = map[RouteName]Route{
	Home:          {Name: Home},
	Login:         {Name: Login},
	Register:      {Name: Register},
	Generate:      {Name: Generate, RequiresAuth: true},
	History:       {Name: History, RequiresAuth: true},
	Admin:         {Name: Admin, RequiresAuth: true, RequiresAdmin: true},
	BuyCredits:    {Name: BuyCredits, RequiresAuth: true},
	PaymentResult: {Name: PaymentResult, RequiresAuth: true},
}

// Lookup returns the policy for name. Unknown routes are public.
func Lookup(name RouteName) (Route, bool) {
	r, ok := routes[name]
	if !ok {
		return Route{Name: name}, false
	}
	return r, true
}

// Decision is the outcome of Resolve. When Allow is false, Redirect names the
// route to show instead.
type Decision struct {
	Allow    bool
	Redirect RouteName
}

// Resolve applies the access policy of target.
func Resolve(target RouteName, isLoggedIn, isAdmin bool) Decision {
	r, _ := Lookup(target)
	switch {
	case r.RequiresAuth && !isLoggedIn:
		return Decision{Redirect: Login}
	case r.RequiresAdmin && !isAdmin:
		return Decision{Redirect: Home}
	}
	return Decision{Allow: true}
}
