// Command outletd runs the mock portal API server, for developing the
// client without reaching the production service.
package main

import (
	"crypto/rand"
	"log"
	"os"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/neoidea/outlet/core"
	"github.com/neoidea/outlet/mockapi"
)

func main() {
	_ = godotenv.Load()

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer func() {
		_ = logger.Sync()
	}()

	mdiID := os.Getenv("OUTLET_MDI_ID")
	if mdiID == "" {
		mdiID = "172"
	}

	signingKey := []byte(os.Getenv("OUTLET_SIGNING_KEY"))
	if len(signingKey) == 0 {
		signingKey = make([]byte, 32)
		if _, err := rand.Read(signingKey); err != nil {
			logger.Fatal("failed to generate signing key", zap.Error(err))
		}
		logger.Info("using a random signing key; sessions will not survive a restart")
	}

	server := mockapi.NewServer(mdiID, signingKey)

	if email := os.Getenv("OUTLET_DEMO_EMAIL"); email != "" {
		password := os.Getenv("OUTLET_DEMO_PASSWORD")
		if _, err := server.RegisterAccount("Demo User", email, password); err != nil {
			logger.Fatal("failed to register demo account", zap.Error(err))
		}
		logger.Info("registered demo account", zap.String("email", email))
	}

	server.SetLayout(core.Layout{
		Name:            "Demo Portal",
		Background:      "#101014",
		BackgroundColor: "#101014",
		Text:            "#f2f2f2",
		Color:           "#e6324b",
	})

	addr := os.Getenv("OUTLET_LISTEN")
	if addr == "" {
		addr = ":9000"
	}

	router := mockapi.SetupRouter(server)
	if err := router.Run(addr); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}
