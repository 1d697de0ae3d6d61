package suites

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/adityadwic/mongo-acceptor/db"
	"github.com/adityadwic/mongo-acceptor/fixtures"
	"github.com/adityadwic/mongo-acceptor/types"
)

const (
	validationDatabase  = "validation_test_db"
	schemaCollection    = "schema_test"
	integrityCollection = "integrity_test"
	uniqueCollection    = "unique_test"
	qualityCollection   = "validation_test"
	accountCollectionA  = "account1"
	accountCollectionB  = "account2"
	qualityFixtureCount = 1000
	emailPattern        = `^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`
	initialBalance      = 1000.0
	transferAmount      = 200.0
	ruleViolatingDebit  = 5000.0
)

// balanceDeltas is the signed update sequence the consistency check applies.
var balanceDeltas = []float64{-100, 50, -75}

// ValidationSuite enforces schema validation at the storage layer, uniqueness
// constraints, and arithmetic consistency across sequential partial updates.
type ValidationSuite struct {
	cfg Config
}

func (s *ValidationSuite) Category() types.Category { return types.CategoryValidation }

// ExpectedBalance applies the signed deltas to the initial value.
func ExpectedBalance(initial float64, deltas []float64) float64 {
	balance := initial
	for _, d := range deltas {
		balance += d
	}
	return balance
}

func (s *ValidationSuite) Run(ctx context.Context) (*types.SuiteResult, error) {
	col := NewCollector(s.Category(), s.cfg.logger())

	client, err := db.Connect(ctx, s.cfg.MongoURI)
	if err != nil {
		return nil, fmt.Errorf("validation suite setup: %w", err)
	}
	defer func() { _ = client.Disconnect(ctx) }()

	database := client.Database(s.cfg.DBPrefix + validationDatabase)
	err = db.DropCollections(ctx, database,
		schemaCollection, integrityCollection, uniqueCollection, qualityCollection,
		accountCollectionA, accountCollectionB)
	if err != nil {
		return nil, fmt.Errorf("validation suite cleanup: %w", err)
	}

	s.runSchemaChecks(ctx, col, database)
	s.runIntegrityChecks(ctx, col, database)
	s.runTransactionChecks(ctx, col, database)
	s.runQualityChecks(ctx, col, database)

	result, path, err := col.Write(s.cfg.ReportsDir)
	if err != nil {
		return nil, err
	}
	s.cfg.logger().Info("validation suite report written", zap.String("path", path))
	return result, nil
}

func (s *ValidationSuite) runSchemaChecks(ctx context.Context, col *Collector, database *mongo.Database) {
	created := false
	col.Run("Schema Validator Setup", func() (string, error) {
		validator := bson.M{"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"name", "email", "age"},
			"properties": bson.M{
				"name": bson.M{
					"bsonType":    "string",
					"description": "must be a string and is required",
				},
				"email": bson.M{
					"bsonType":    "string",
					"pattern":     emailPattern,
					"description": "must be a valid email format",
				},
				"age": bson.M{
					"bsonType":    "int",
					"minimum":     0,
					"maximum":     150,
					"description": "must be an integer between 0 and 150",
				},
				"salary": bson.M{
					"bsonType":    "number",
					"minimum":     0,
					"description": "must be a positive number",
				},
			},
		}}
		opts := options.CreateCollection().SetValidator(validator)
		if err := database.CreateCollection(ctx, schemaCollection, opts); err != nil {
			return "", fmt.Errorf("failed to create validated collection: %w", err)
		}
		created = true
		return "collection created with $jsonSchema validator", nil
	})
	if !created {
		return
	}

	coll := database.Collection(schemaCollection)

	col.Run("Valid Document Insertion", func() (string, error) {
		res, err := coll.InsertOne(ctx, bson.M{
			"name":   "John Doe",
			"email":  "john.doe@example.com",
			"age":    int32(30),
			"salary": 75000.50,
		})
		if err != nil {
			return "", fmt.Errorf("failed to insert valid document: %w", err)
		}
		return fmt.Sprintf("document inserted with id %v", res.InsertedID), nil
	})

	rejections := []struct {
		name string
		doc  bson.M
	}{
		{"Missing Required Field Rejection", bson.M{
			"name":  "Jane Doe",
			"email": "jane@example.com",
			// required age omitted
		}},
		{"Invalid Email Format Rejection", bson.M{
			"name":  "Bob Smith",
			"email": "invalid-email-format",
			"age":   int32(25),
		}},
		{"Age Range Validation", bson.M{
			"name":  "Old Person",
			"email": "old@example.com",
			"age":   int32(200),
		}},
	}
	for _, tc := range rejections {
		tc := tc
		col.Run(tc.name, func() (string, error) {
			if _, err := coll.InsertOne(ctx, tc.doc); err != nil {
				return fmt.Sprintf("correctly rejected non-conforming document: %v", err), nil
			}
			return "", fmt.Errorf("non-conforming document was incorrectly accepted")
		})
	}
}

func (s *ValidationSuite) runIntegrityChecks(ctx context.Context, col *Collector, database *mongo.Database) {
	col.Run("Data Consistency After Updates", func() (string, error) {
		coll := database.Collection(integrityCollection)
		res, err := coll.InsertOne(ctx, bson.M{
			"user_id":      "user_001",
			"name":         "Alice Johnson",
			"balance":      initialBalance,
			"transactions": bson.A{},
			"created_at":   time.Now(),
		})
		if err != nil {
			return "", err
		}

		for _, delta := range balanceDeltas {
			kind := "deposit"
			amount := delta
			if delta < 0 {
				kind = "withdrawal"
				amount = -delta
			}
			_, err := coll.UpdateOne(ctx, bson.M{"_id": res.InsertedID}, bson.M{
				"$inc":  bson.M{"balance": delta},
				"$push": bson.M{"transactions": bson.M{"type": kind, "amount": amount}},
			})
			if err != nil {
				return "", err
			}
		}

		var final struct {
			Balance      float64 `bson:"balance"`
			Transactions bson.A  `bson:"transactions"`
		}
		if err := coll.FindOne(ctx, bson.M{"_id": res.InsertedID}).Decode(&final); err != nil {
			return "", err
		}
		want := ExpectedBalance(initialBalance, balanceDeltas)
		if final.Balance != want {
			return "", fmt.Errorf("expected balance %.2f, got %.2f", want, final.Balance)
		}
		if len(final.Transactions) != len(balanceDeltas) {
			return "", fmt.Errorf("expected %d transactions, got %d", len(balanceDeltas), len(final.Transactions))
		}
		return fmt.Sprintf("balance %.2f, transactions %d", final.Balance, len(final.Transactions)), nil
	})

	col.Run("Unique Index Constraint", func() (string, error) {
		coll := database.Collection(uniqueCollection)
		_, err := coll.Indexes().CreateOne(ctx, mongo.IndexModel{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true),
		})
		if err != nil {
			return "", err
		}
		if _, err := coll.InsertOne(ctx, bson.M{"name": "User 1", "email": "unique@example.com"}); err != nil {
			return "", err
		}
		if _, err := coll.InsertOne(ctx, bson.M{"name": "User 2", "email": "unique@example.com"}); err != nil {
			return fmt.Sprintf("correctly rejected duplicate: %v", err), nil
		}
		return "", fmt.Errorf("duplicate document was incorrectly accepted")
	})

	col.Run("Data Type Consistency", func() (string, error) {
		coll := database.Collection(integrityCollection)
		docs := []interface{}{
			bson.M{"field": "string_value", "kind": "string"},
			bson.M{"field": int32(123), "kind": "integer"},
			bson.M{"field": 123.45, "kind": "double"},
			bson.M{"field": true, "kind": "boolean"},
			bson.M{"field": primitive.NewDateTimeFromTime(time.Now()), "kind": "datetime"},
		}
		if _, err := coll.InsertMany(ctx, docs); err != nil {
			return "", err
		}

		cursor, err := coll.Find(ctx, bson.M{"kind": bson.M{"$exists": true}})
		if err != nil {
			return "", err
		}
		var stored []bson.M
		if err := cursor.All(ctx, &stored); err != nil {
			return "", err
		}
		for _, doc := range stored {
			kind, _ := doc["kind"].(string)
			value := doc["field"]
			ok := false
			switch kind {
			case "string":
				_, ok = value.(string)
			case "integer":
				_, ok = value.(int32)
			case "double":
				_, ok = value.(float64)
			case "boolean":
				_, ok = value.(bool)
			case "datetime":
				_, ok = value.(primitive.DateTime)
			}
			if !ok {
				return "", fmt.Errorf("%s field came back as %T", kind, value)
			}
		}
		return "all data types preserved correctly", nil
	})
}

// runTransactionChecks exercises transaction-like behavior without server
// transactions, which need a replica set the default environment lacks.
func (s *ValidationSuite) runTransactionChecks(ctx context.Context, col *Collector, database *mongo.Database) {
	accountA := database.Collection(accountCollectionA)
	accountB := database.Collection(accountCollectionB)

	col.Run("Multi-Collection Transfer", func() (string, error) {
		if _, err := accountA.InsertOne(ctx, bson.M{"account_id": "ACC001", "balance": initialBalance}); err != nil {
			return "", err
		}
		if _, err := accountB.InsertOne(ctx, bson.M{"account_id": "ACC002", "balance": 500.0}); err != nil {
			return "", err
		}

		if _, err := accountA.UpdateOne(ctx, bson.M{"account_id": "ACC001"},
			bson.M{"$inc": bson.M{"balance": -transferAmount}}); err != nil {
			return "", err
		}
		if _, err := accountB.UpdateOne(ctx, bson.M{"account_id": "ACC002"},
			bson.M{"$inc": bson.M{"balance": transferAmount}}); err != nil {
			return "", err
		}

		balanceA, err := accountBalance(ctx, accountA, "ACC001")
		if err != nil {
			return "", err
		}
		balanceB, err := accountBalance(ctx, accountB, "ACC002")
		if err != nil {
			return "", err
		}
		if balanceA != initialBalance-transferAmount || balanceB != 500.0+transferAmount {
			return "", fmt.Errorf("balance mismatch after transfer: %.2f / %.2f", balanceA, balanceB)
		}
		return fmt.Sprintf("transfer successful: %.0f moved between collections", transferAmount), nil
	})

	col.Run("Business Rule Validation And Rollback", func() (string, error) {
		before, err := accountBalance(ctx, accountA, "ACC001")
		if err != nil {
			return "", err
		}

		if _, err := accountA.UpdateOne(ctx, bson.M{"account_id": "ACC001"},
			bson.M{"$inc": bson.M{"balance": -ruleViolatingDebit}}); err != nil {
			return "", err
		}
		after, err := accountBalance(ctx, accountA, "ACC001")
		if err != nil {
			return "", err
		}
		if after >= 0 {
			return "", fmt.Errorf("business rule violation not detected (balance %.2f)", after)
		}

		if _, err := accountA.UpdateOne(ctx, bson.M{"account_id": "ACC001"},
			bson.M{"$set": bson.M{"balance": before}}); err != nil {
			return "", err
		}
		return "detected negative-balance violation and rolled back", nil
	})
}

func (s *ValidationSuite) runQualityChecks(ctx context.Context, col *Collector, database *mongo.Database) {
	coll := database.Collection(qualityCollection)

	loaded := false
	col.Run("Fixture Data Generation", func() (string, error) {
		n, err := fixtures.Load(ctx, coll, qualityFixtureCount)
		if err != nil {
			return "", err
		}
		loaded = true
		return fmt.Sprintf("%d fixture documents generated", n), nil
	})
	if !loaded {
		return
	}

	col.Run("Data Quality Scan", func() (string, error) {
		total, err := coll.CountDocuments(ctx, bson.M{})
		if err != nil {
			return "", err
		}
		if total == 0 {
			return "", fmt.Errorf("quality collection is empty")
		}

		for _, field := range []string{"user_id", "name", "email"} {
			missing, err := coll.CountDocuments(ctx, bson.M{field: bson.M{"$exists": false}})
			if err != nil {
				return "", err
			}
			col.SetMetric("quality_missing_"+field, float64(missing))
			if missing > 0 {
				col.Recordf("Missing "+field, types.CheckStatusWarning,
					"%d of %d documents (%.2f%%) lack %s", missing, total, pct(missing, total), field)
			}
		}

		pipeline := mongo.Pipeline{
			{{Key: "$group", Value: bson.M{"_id": "$email", "count": bson.M{"$sum": 1}}}},
			{{Key: "$match", Value: bson.M{"count": bson.M{"$gt": 1}}}},
		}
		cursor, err := coll.Aggregate(ctx, pipeline)
		if err != nil {
			return "", err
		}
		var duplicates []bson.M
		if err := cursor.All(ctx, &duplicates); err != nil {
			return "", err
		}
		col.SetMetric("quality_duplicate_emails", float64(len(duplicates)))
		if len(duplicates) > 0 {
			return "", fmt.Errorf("%d duplicate email values found", len(duplicates))
		}

		invalid, err := coll.CountDocuments(ctx, bson.M{
			"email": bson.M{"$not": bson.M{"$regex": emailPattern}},
		})
		if err != nil {
			return "", err
		}
		col.SetMetric("quality_invalid_emails", float64(invalid))
		if invalid > 0 {
			return "", fmt.Errorf("%d documents (%.2f%%) have invalid email formats", invalid, pct(invalid, total))
		}

		return fmt.Sprintf("%d documents scanned: no missing fields, duplicates or invalid emails", total), nil
	})
}

func accountBalance(ctx context.Context, coll *mongo.Collection, accountID string) (float64, error) {
	var doc struct {
		Balance float64 `bson:"balance"`
	}
	if err := coll.FindOne(ctx, bson.M{"account_id": accountID}).Decode(&doc); err != nil {
		return 0, err
	}
	return doc.Balance, nil
}

func pct(part, total int64) float64 {
	if total == 0 {
		return 0
	}
	return float64(part) / float64(total) * 100
}
