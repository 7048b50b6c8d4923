// cmd/main.go
package main

import (
	"hrms-api/app"
)

// @title           HRMS API
// @version         1.0
// @description     Authentication and role-based access for the HRMS backend.

// @contact.name   API Support
// @contact.email  support@example.com

// @host      localhost:8080
// @BasePath  /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	app.Run()
}
