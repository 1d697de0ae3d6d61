// Package fixtures generates deterministic sample documents suites use as
// non-empty input state.
package fixtures

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

var (
	firstNames = []string{"Alice", "Bob", "Charlie", "Diana", "Evan", "Fiona", "Gita", "Hendra", "Intan", "Joko"}
	lastNames  = []string{"Johnson", "Smith", "Wijaya", "Garcia", "Chen", "Okafor", "Novak", "Santoso", "Kim", "Dubois"}
	cities     = []string{"Jakarta", "Singapore", "Sydney", "Berlin", "Austin", "Nairobi", "Osaka", "Lima"}
	companies  = []string{"Initech", "Globex", "Umbrella", "Soylent", "Hooli", "Vandelay"}
	jobTitles  = []string{"QA Engineer", "Backend Developer", "Data Analyst", "SRE", "Product Manager"}
	themes     = []string{"light", "dark", "auto"}
	languages  = []string{"en", "id", "es", "fr", "de", "ja"}
)

// User builds the fixture document for index i. The generator is seeded by
// the index, so repeated runs produce identical documents (modulo the
// created_at stamp), which keeps suite runs idempotent.
func User(i int) bson.M {
	rng := rand.New(rand.NewSource(int64(i)))
	userID := fmt.Sprintf("USER_%06d", i)
	name := firstNames[i%len(firstNames)] + " " + lastNames[(i/len(firstNames))%len(lastNames)]
	checksum := sha256.Sum256([]byte(userID))

	return bson.M{
		"user_id": userID,
		"name":    name,
		"email":   fmt.Sprintf("user%d@example.com", i),
		"phone":   fmt.Sprintf("+62-812-%07d", rng.Intn(10000000)),
		"address": bson.M{
			"street":   fmt.Sprintf("%d Test Street", 1+rng.Intn(999)),
			"city":     cities[rng.Intn(len(cities))],
			"zip_code": fmt.Sprintf("%05d", rng.Intn(100000)),
		},
		"registration_date": time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, rng.Intn(365)),
		"profile": bson.M{
			"company":   companies[rng.Intn(len(companies))],
			"job_title": jobTitles[rng.Intn(len(jobTitles))],
		},
		"preferences": bson.M{
			"theme":         themes[rng.Intn(len(themes))],
			"language":      languages[rng.Intn(len(languages))],
			"notifications": rng.Intn(2) == 0,
			"newsletter":    rng.Intn(2) == 0,
		},
		"metadata": bson.M{
			"created_by": "test_suite",
			"created_at": time.Now(),
			"session_id": uuid.NewSHA1(uuid.NameSpaceOID, []byte(userID)).String(),
			"checksum":   hex.EncodeToString(checksum[:]),
		},
	}
}

// Users builds n fixture documents.
func Users(n int) []interface{} {
	docs := make([]interface{}, n)
	for i := range docs {
		docs[i] = User(i)
	}
	return docs
}

// Load replaces the contents of coll with n fixture users.
func Load(ctx context.Context, coll *mongo.Collection, n int) (int, error) {
	if _, err := coll.DeleteMany(ctx, bson.M{}); err != nil {
		return 0, errors.Wrap(err, "clear fixture collection")
	}
	res, err := coll.InsertMany(ctx, Users(n))
	if err != nil {
		return 0, errors.Wrap(err, "insert fixtures")
	}
	return len(res.InsertedIDs), nil
}
