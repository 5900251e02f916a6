package adminapi

// InitRouter registers all admin console routes. Must run after
// webserver.Init.
func InitRouter() {
	registerAuthRoutes()
	registerDashboardRoutes()
	registerProductRoutes()
	registerOrderRoutes()
	registerResellerRoutes()
	registerCouponRoutes()
	registerSettingsRoutes()
}
