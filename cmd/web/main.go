// @title           Job Portal API
// @version         1.0
// @description     REST API портала вакансий: вакансии, отклики, справочники, уведомления.
// @contact.name    Job Portal
// @contact.email   support@jobportal.local
// @license.name    MIT
// @license.url     https://opensource.org/licenses/MIT
// @host            localhost:8080
// @BasePath        /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

package main

import (
	"jobportal_backend/internal/app"

	_ "jobportal_backend/docs"
)

func main() {
	app.Run()
}
