package server

// Route path constants
// All application routes are defined here to ensure consistency and prevent typos
const (
	// Page routes gated at the edge
	RouteLogin     = "/login"
	RouteSignup    = "/signup"
	RouteDashboard = "/dashboard"

	// Auth API routes
	RouteAPILogin  = "/api/auth/login"
	RouteAPISignup = "/api/auth/signup"
	RouteAPILogout = "/api/auth/logout"

	// Account API routes
	RouteAPIProfile  = "/api/account/profile"
	RouteAPIPassword = "/api/account/password"

	// Health probe, exempt from gating
	RouteHealth = "/api/health"
)

// Route classification prefixes
const (
	protectedPrefix = "/dashboard"
	apiPrefix       = "/api/"
)
