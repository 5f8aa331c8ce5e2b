// Command mockplatform serves stand-in downstream platform APIs for local
// development, seeded with one demo account per platform.
package main

import (
	"log"
	"net/http"
	"os"

	"github.com/luxbridge-ai/luxbridge-auth/internal/domain"
	"github.com/luxbridge-ai/luxbridge-auth/internal/platform"
	"github.com/luxbridge-ai/luxbridge-auth/internal/token"
)

func main() {
	addr := os.Getenv("MOCK_PLATFORM_ADDR")
	if addr == "" {
		addr = ":3000"
	}
	secret := os.Getenv("PLATFORM_SIGNING_SECRET")
	if len(secret) < 32 {
		log.Fatal("PLATFORM_SIGNING_SECRET must be at least 32 characters long")
	}

	// The OAuth secret is unused here; the mock only mints platform tokens.
	issuer := token.NewIssuer("mockplatform", "unused-oauth-secret-placeholder-0000000", secret)

	accounts := map[domain.Platform][]platform.MockAccount{
		domain.PlatformSplint: {{
			UserID: "splint-demo-1", Email: "demo@splint.test", Password: "demo123", Name: "Splint Demo",
		}},
		domain.PlatformMasterworks: {{
			UserID: "mw-demo-1", Email: "demo@masterworks.test", Password: "demo123", Name: "Masterworks Demo",
		}},
		domain.PlatformRealT: {{
			UserID: "realt-demo-1", Email: "demo@realt.test", Password: "demo123", Name: "RealT Demo",
		}},
	}

	log.Printf("mock platform APIs listening on %s", addr)
	if err := http.ListenAndServe(addr, platform.NewMockAPI(issuer, accounts)); err != nil {
		log.Fatal(err)
	}
}
