package services

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/dmitrijs2005/gophgate/internal/client/client"
	"github.com/dmitrijs2005/gophgate/internal/client/models"
	"github.com/stretchr/testify/require"
)

func setupRepos(t *testing.T) *client.Repositories {
	t.Helper()
	db, err := client.InitDatabase(context.Background(), filepath.Join(t.TempDir(), "scanner.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return client.NewRepositories(db)
}

func testGates() map[string]models.GateProfile {
	return map[string]models.GateProfile{
		"Gate 1": {
			Name: "Gate 1 - Exhibition Day 1", Location: "Exhibition Hall",
			Date: "2025-11-25", Time: "0001-1730",
			AllowedPasses: []string{models.PassExhibitionDay1, models.PassExhibitor},
			SessionType:   models.PassExhibitionDay1,
		},
		"Gate 3": {
			Name: "Gate 3 - Interactive Sessions", Location: "Zorawar Hall",
			Date: "2025-11-26", Time: "1020-1330",
			AllowedPasses: []string{models.PassInteractiveSessions},
			SessionType:   models.PassInteractiveSessions,
		},
		"Main Entrance": {Name: "Main Entrance", Location: "Manekshaw Centre"},
	}
}

var testSession = models.Session{DeviceID: "device-test", Operator: "gatekeeper", Token: "tok"}
