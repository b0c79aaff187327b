package main

import (
	_ "github.com/gnosis118/paper-n-print-sub000/docs"
	"github.com/gnosis118/paper-n-print-sub000/internal/adapter/http/routes"

	_ "github.com/joho/godotenv/autoload"
)

// @title           Estimate Service API
// @version         1.0
// @description     Estimate lifecycle service (drafts, sharing, deposits, invoices) backed by DynamoDB and Stripe Checkout.
// @termsOfService  http://swagger.io/terms/

// @contact.name   API Support
// @contact.url    http://www.swagger.io/support
// @contact.email  support@swagger.io

// @license.name  Apache 2.0
// @license.url   http://www.apache.org/licenses/LICENSE-2.0.html

// @host localhost:8080

// @BasePath  /v1

func main() {
	routes.Run()
}
