// Package docs Inspeksi API documentation
package docs

// Swagger documentation info
// @title Inspeksi API
// @version 1.0
// @description Central API documentation - For all Inspeksi microservices

// @contact.name API Support
// @contact.email support@inspeksi.id

// @host localhost:8000
// @BasePath /api
// @schemes http https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the JWT token.

// Auth Service Endpoints
// @tag.name auth
// @tag.description Authentication and user session management

// Core Service Endpoints
// @tag.name organizations
// @tag.description Organization management
// @tag.name buildings
// @tag.description Building management
// @tag.name locations
// @tag.description Location management and QR payloads
// @tag.name users
// @tag.description User management
// @tag.name roles
// @tag.description Role management

// Inspection Service Endpoints
// @tag.name inspections
// @tag.description Inspection records, photos, export and statistics
// @tag.name templates
// @tag.description Inspection template management

// Billing Service Endpoints
// @tag.name billing
// @tag.description Plans, subscriptions and payment callbacks

// Notification Service Endpoints
// @tag.name notifications
// @tag.description Notifications and audit logs
