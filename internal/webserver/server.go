package webserver

import (
	"fmt"

	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"gorm.io/gorm"

	"github.com/tropadobruxobr/Produtos-Tropa-do-Bruxo/internal/app"
)

// Context keys set on every request.
const (
	AppContextKey = "appctx"
	DBContextKey  = "db"
)

var server *WebServer

// WebServer wraps the echo instance with a public storefront group and
// a JWT-protected admin group.
type WebServer struct {
	root   *echo.Echo
	pub    *echo.Group
	api    *echo.Group
	appCtx app.AppContext
}

func Init(appCtx app.AppContext) {
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Set(AppContextKey, appCtx)
			c.Set(DBContextKey, appCtx.DB())
			return next(c)
		}
	})

	pub := e.Group("/api")
	api := e.Group("/api/admin")
	api.Use(echojwt.WithConfig(echojwt.Config{
		SigningKey: []byte(appCtx.Config().Web.Secret),
	}))

	server = &WebServer{root: e, pub: pub, api: api, appCtx: appCtx}
}

func Listen() error {
	cfg := server.appCtx.Config().Web
	return server.root.Start(fmt.Sprintf("%s:%d", cfg.Host, cfg.Port))
}

// Echo exposes the underlying instance (tests).
func Echo() *echo.Echo {
	return server.root
}

// AppFromContext returns the application context injected per request.
func AppFromContext(c echo.Context) app.AppContext {
	return c.Get(AppContextKey).(app.AppContext)
}

// DBFromContext returns the request database handle.
func DBFromContext(c echo.Context) *gorm.DB {
	return c.Get(DBContextKey).(*gorm.DB)
}

// Admin api group registration helpers

func ApiGET(path string, h echo.HandlerFunc) {
	server.api.GET(path, h)
}

func ApiPOST(path string, h echo.HandlerFunc) {
	server.api.POST(path, h)
}

func ApiPUT(path string, h echo.HandlerFunc) {
	server.api.PUT(path, h)
}

func ApiDELETE(path string, h echo.HandlerFunc) {
	server.api.DELETE(path, h)
}

// Public storefront group registration helpers

func PubGET(path string, h echo.HandlerFunc) {
	server.pub.GET(path, h)
}

func PubPOST(path string, h echo.HandlerFunc) {
	server.pub.POST(path, h)
}
