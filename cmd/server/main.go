package main

import (
	"context"

	"adminportal/internal/audit"
	"adminportal/internal/handler"
	"adminportal/internal/middleware"
	"adminportal/internal/model"
	"adminportal/internal/repository"
	"adminportal/internal/seed"
	"adminportal/internal/service"
	"adminportal/internal/storage"
	"adminportal/pkg/config"
	"adminportal/pkg/database"
	"adminportal/pkg/jwtutil"
	"adminportal/pkg/logger"
	"adminportal/prometheus"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
)

func main() {
	// Load configuration from .env file and environment variables
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger with config
	if err := logger.InitLogger(cfg); err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	log := logger.GetLogger()
	log.Info("Starting admin portal...", zap.String("environment", cfg.Server.Env))

	// Initialize database
	db, err := database.InitDB(&cfg.DB)
	if err != nil {
		log.Fatal("Failed to initialize database", zap.Error(err))
	}
	if err := repository.RegisterTenantScope(db); err != nil {
		log.Fatal("Failed to register tenant scope", zap.Error(err))
	}
	if err := database.MigrateModels(db,
		&model.Tenant{},
		&model.User{},
		&model.Role{},
		&model.Permission{},
		&model.UserRole{},
		&model.RolePermission{},
		&model.Country{},
		&model.State{},
		&model.Address{},
		&model.AuditLog{},
	); err != nil {
		log.Fatal("Failed to run migrations", zap.Error(err))
	}
	log.Info("Database connection established and migrations completed")

	stores := repository.NewStores(db)

	// Seed the permission catalog, the host administrator and reference data
	if err := seed.Run(context.Background(), stores, cfg.Seed); err != nil {
		log.Fatal("Failed to seed database", zap.Error(err))
	}

	files, err := storage.NewLocalStore(cfg.Storage.Dir)
	if err != nil {
		log.Fatal("Failed to initialize file storage", zap.Error(err))
	}

	jwtUtil := jwtutil.NewJWTUtil(&cfg.JWT)

	tenantSvc := service.NewTenantService(stores.Tenants, files, cfg.Server.HostSubdomain)
	userSvc := service.NewUserService(stores.Users, stores.Users, stores.UserRoles, stores.Tenants)
	roleSvc := service.NewRoleService(stores.Roles, stores.RolePermissions, stores.Permissions)
	permSvc := service.NewPermissionService(stores.Permissions)
	locationSvc := service.NewLocationService(stores.Countries, stores.States)
	addressSvc := service.NewAddressService(stores.Addresses, stores.Countries, stores.States)

	recorder := audit.NewRecorder(db)

	authHandler := handler.NewAuthHandler(userSvc, tenantSvc, jwtUtil)
	tenantHandler := handler.NewTenantHandler(tenantSvc)
	userHandler := handler.NewUserHandler(userSvc)
	roleHandler := handler.NewRoleHandler(roleSvc)
	permHandler := handler.NewPermissionHandler(permSvc)
	locationHandler := handler.NewLocationHandler(locationSvc)
	addressHandler := handler.NewAddressHandler(addressSvc)
	healthHandler := handler.NewHealthHandler(db)

	// Initialize Echo framework
	e := echo.New()

	// Apply global middleware - order matters
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORS())
	e.Use(middleware.RequestIDMiddleware)
	e.Use(logger.Middleware())
	e.Use(prometheus.MetricsMiddleware())
	e.Use(middleware.ErrorHandler(recorder, cfg.Server.IsDevelopment()))
	e.Use(middleware.TenantResolver(tenantSvc, cfg.Server.HostSubdomain))

	// Public routes - no authentication required
	e.GET("/health", healthHandler.Check)
	e.GET("/metrics", echo.WrapHandler(prometheus.GetPrometheusHandler()))

	auth := e.Group("/auth")
	auth.POST("/login", authHandler.Login)
	auth.POST("/register", authHandler.Register)

	// Protected routes - bearer token plus a permission per operation
	api := e.Group("/api")
	api.Use(middleware.AuthMiddleware(jwtUtil))

	tenants := api.Group("/tenants")
	tenants.POST("", tenantHandler.Create, middleware.RequirePermission(userSvc, "TENANT_CREATE"))
	tenants.GET("", tenantHandler.List, middleware.RequirePermission(userSvc, "TENANT_READ"))
	tenants.GET("/:id", tenantHandler.Get, middleware.RequirePermission(userSvc, "TENANT_READ"))
	tenants.PUT("/:id", tenantHandler.Update, middleware.RequirePermission(userSvc, "TENANT_UPDATE"))
	tenants.PUT("/:id/status", tenantHandler.SetStatus, middleware.RequirePermission(userSvc, "TENANT_UPDATE"))
	tenants.POST("/:id/logo", tenantHandler.UploadLogo, middleware.RequirePermission(userSvc, "TENANT_UPDATE"))
	tenants.DELETE("/:id", tenantHandler.Delete, middleware.RequirePermission(userSvc, "TENANT_DELETE"))

	users := api.Group("/users")
	users.POST("", userHandler.Create, middleware.RequirePermission(userSvc, "USER_CREATE"))
	users.GET("", userHandler.List, middleware.RequirePermission(userSvc, "USER_READ"))
	users.GET("/:id", userHandler.Get, middleware.RequirePermission(userSvc, "USER_READ"))
	users.GET("/:id/permissions", userHandler.Permissions, middleware.RequirePermission(userSvc, "USER_READ"))
	users.PUT("/:id", userHandler.Update, middleware.RequirePermission(userSvc, "USER_UPDATE"))
	users.PUT("/:id/password", userHandler.ChangePassword, middleware.RequirePermission(userSvc, "USER_UPDATE"))
	users.POST("/:id/roles/:roleId", userHandler.AssignRole, middleware.RequirePermission(userSvc, "USER_UPDATE"))
	users.DELETE("/:id/roles/:roleId", userHandler.RemoveRole, middleware.RequirePermission(userSvc, "USER_UPDATE"))
	users.DELETE("/:id", userHandler.Delete, middleware.RequirePermission(userSvc, "USER_DELETE"))

	roles := api.Group("/roles")
	roles.POST("", roleHandler.Create, middleware.RequirePermission(userSvc, "ROLE_CREATE"))
	roles.GET("", roleHandler.List, middleware.RequirePermission(userSvc, "ROLE_READ"))
	roles.GET("/:id", roleHandler.Get, middleware.RequirePermission(userSvc, "ROLE_READ"))
	roles.GET("/:id/permissions", roleHandler.Grants, middleware.RequirePermission(userSvc, "ROLE_READ"))
	roles.PUT("/:id", roleHandler.Update, middleware.RequirePermission(userSvc, "ROLE_UPDATE"))
	roles.POST("/:id/permissions/:permissionId", roleHandler.Grant, middleware.RequirePermission(userSvc, "ROLE_UPDATE"))
	roles.DELETE("/:id/permissions/:permissionId", roleHandler.Revoke, middleware.RequirePermission(userSvc, "ROLE_UPDATE"))
	roles.DELETE("/:id", roleHandler.Delete, middleware.RequirePermission(userSvc, "ROLE_DELETE"))

	permissions := api.Group("/permissions")
	permissions.POST("", permHandler.Create, middleware.RequirePermission(userSvc, "PERMISSION_CREATE"))
	permissions.GET("", permHandler.List, middleware.RequirePermission(userSvc, "PERMISSION_READ"))
	permissions.GET("/:id", permHandler.Get, middleware.RequirePermission(userSvc, "PERMISSION_READ"))
	permissions.PUT("/:id", permHandler.Update, middleware.RequirePermission(userSvc, "PERMISSION_UPDATE"))
	permissions.DELETE("/:id", permHandler.Delete, middleware.RequirePermission(userSvc, "PERMISSION_DELETE"))

	locations := api.Group("/locations")
	locations.GET("/countries", locationHandler.Countries)
	locations.GET("/countries/:countryId/states", locationHandler.States)
	locations.POST("/countries", locationHandler.CreateCountry, middleware.RequirePermission(userSvc, "LOCATION_MANAGE"))
	locations.POST("/countries/:countryId/states", locationHandler.CreateState, middleware.RequirePermission(userSvc, "LOCATION_MANAGE"))
	locations.PUT("/countries/:id/active", locationHandler.SetCountryActive, middleware.RequirePermission(userSvc, "LOCATION_MANAGE"))
	locations.PUT("/states/:id/active", locationHandler.SetStateActive, middleware.RequirePermission(userSvc, "LOCATION_MANAGE"))

	addresses := api.Group("/addresses")
	addresses.POST("", addressHandler.Create, middleware.RequirePermission(userSvc, "ADDRESS_CREATE"))
	addresses.GET("", addressHandler.List, middleware.RequirePermission(userSvc, "ADDRESS_READ"))
	addresses.GET("/:id", addressHandler.Get, middleware.RequirePermission(userSvc, "ADDRESS_READ"))
	addresses.PUT("/:id", addressHandler.Update, middleware.RequirePermission(userSvc, "ADDRESS_UPDATE"))
	addresses.DELETE("/:id", addressHandler.Delete, middleware.RequirePermission(userSvc, "ADDRESS_DELETE"))

	// Start server
	port := cfg.Server.Port
	log.Info("Starting server", zap.String("port", port))
	if err := e.Start(":" + port); err != nil {
		log.Fatal("Failed to start server", zap.Error(err))
	}
}
