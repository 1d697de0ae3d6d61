package suites

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/adityadwic/mongo-acceptor/db"
	"github.com/adityadwic/mongo-acceptor/types"
)

const (
	performanceDatabase  = "performance_test_db"
	loadTestCollection   = "load_test"
	stressTestCollection = "stress_test"
	concurrentCollection = "concurrent_test"
	singleInsertSample   = 100
	querySeedCount       = 10000
	queryResultLimit     = 10
)

var departments = []string{"Engineering", "Sales", "Marketing", "HR", "Finance"}

// PerformanceSuite times insert, query, concurrent and aggregation workloads.
// Durations and derived rates are measurements of the target system, not
// assertions: the checks fail only when an operation errors outright.
type PerformanceSuite struct {
	cfg Config
}

func (s *PerformanceSuite) Category() types.Category { return types.CategoryPerformance }

// Throughput computes items per second, returning 0 when elapsed is zero so
// a fast clock can never cause a division fault.
func Throughput(count int, elapsed time.Duration) float64 {
	if elapsed <= 0 {
		return 0
	}
	return float64(count) / elapsed.Seconds()
}

func (s *PerformanceSuite) Run(ctx context.Context) (*types.SuiteResult, error) {
	col := NewCollector(s.Category(), s.cfg.logger())

	client, err := db.Connect(ctx, s.cfg.MongoURI)
	if err != nil {
		return nil, fmt.Errorf("performance suite setup: %w", err)
	}
	defer func() { _ = client.Disconnect(ctx) }()

	database := client.Database(s.cfg.DBPrefix + performanceDatabase)
	if err := db.DropCollections(ctx, database, loadTestCollection, stressTestCollection, concurrentCollection); err != nil {
		return nil, fmt.Errorf("performance suite cleanup: %w", err)
	}

	s.runInsertChecks(ctx, col, database.Collection(loadTestCollection))
	s.runQueryChecks(ctx, col, database.Collection(loadTestCollection))
	s.runConcurrencyCheck(ctx, col, database.Collection(concurrentCollection))
	s.runAggregationChecks(ctx, col, database.Collection(loadTestCollection))

	result, path, err := col.Write(s.cfg.ReportsDir)
	if err != nil {
		return nil, err
	}
	s.cfg.logger().Info("performance suite report written", zap.String("path", path))
	return result, nil
}

func (s *PerformanceSuite) testDocument(i int) bson.M {
	return bson.M{
		"user_id":    1000 + i,
		"name":       fmt.Sprintf("User_%d", i),
		"email":      fmt.Sprintf("user%d@example.com", i),
		"age":        20 + (i % 50),
		"department": departments[i%len(departments)],
		"salary":     50000 + (i * 100),
		"created_at": time.Now(),
		"metadata": bson.M{
			"last_login": time.Now().Add(-time.Duration(i%720) * time.Hour),
			"preferences": bson.M{
				"theme":    []string{"light", "dark"}[i%2],
				"language": []string{"en", "es", "fr"}[i%3],
			},
		},
	}
}

func (s *PerformanceSuite) runInsertChecks(ctx context.Context, col *Collector, coll *mongo.Collection) {
	col.Run("Insert Performance", func() (string, error) {
		docs := make([]interface{}, s.cfg.DocumentCount)
		for i := range docs {
			docs[i] = s.testDocument(i)
		}

		sample := singleInsertSample
		if sample > len(docs) {
			sample = len(docs)
		}
		start := time.Now()
		for _, doc := range docs[:sample] {
			if _, err := coll.InsertOne(ctx, doc); err != nil {
				return "", err
			}
		}
		singleElapsed := time.Since(start)

		if err := coll.Drop(ctx); err != nil {
			return "", err
		}

		start = time.Now()
		if _, err := coll.InsertMany(ctx, docs); err != nil {
			return "", err
		}
		bulkElapsed := time.Since(start)

		singleRate := Throughput(sample, singleElapsed)
		bulkRate := Throughput(len(docs), bulkElapsed)
		col.SetMetric("single_insert_seconds", singleElapsed.Seconds())
		col.SetMetric("bulk_insert_seconds", bulkElapsed.Seconds())
		col.SetMetric("single_insert_rate", singleRate)
		col.SetMetric("bulk_insert_rate", bulkRate)

		return fmt.Sprintf("single %.2f docs/s over %d inserts, bulk %.2f docs/s over %d documents",
			singleRate, sample, bulkRate, len(docs)), nil
	})
}

func (s *PerformanceSuite) runQueryChecks(ctx context.Context, col *Collector, coll *mongo.Collection) {
	col.Run("Query Performance", func() (string, error) {
		count, err := coll.CountDocuments(ctx, bson.M{})
		if err != nil {
			return "", err
		}
		if count == 0 {
			docs := make([]interface{}, querySeedCount)
			for i := range docs {
				docs[i] = s.testDocument(i)
			}
			if _, err := coll.InsertMany(ctx, docs); err != nil {
				return "", err
			}
		}

		queries := []struct {
			name   string
			filter bson.M
		}{
			{"department_equality", bson.M{"department": "Engineering"}},
			{"age_range", bson.M{"age": bson.M{"$gte": 30, "$lte": 50}}},
			{"salary_threshold", bson.M{"salary": bson.M{"$gt": 75000}}},
			{"nested_field", bson.M{"metadata.preferences.theme": "dark"}},
			{"recent_created", bson.M{"created_at": bson.M{"$gte": time.Now().Add(-30 * 24 * time.Hour)}}},
		}

		iterations := s.cfg.QueryIterations
		if iterations <= 0 {
			iterations = 1
		}
		findOpts := options.Find().SetLimit(queryResultLimit)

		for _, q := range queries {
			start := time.Now()
			for i := 0; i < iterations; i++ {
				cursor, err := coll.Find(ctx, q.filter, findOpts)
				if err != nil {
					return "", fmt.Errorf("query %s: %w", q.name, err)
				}
				var out []bson.M
				if err := cursor.All(ctx, &out); err != nil {
					return "", fmt.Errorf("query %s: %w", q.name, err)
				}
			}
			avg := time.Since(start) / time.Duration(iterations)
			col.SetMetric("query_"+q.name+"_avg_seconds", avg.Seconds())
			col.SetMetric("query_"+q.name+"_qps", Throughput(1, avg))
		}
		return fmt.Sprintf("%d query shapes timed over %d iterations each", len(queries), iterations), nil
	})
}

// runConcurrencyCheck measures the target's native concurrency handling:
// workers share no in-process state, each timing is an independent
// observation, and no ordering is guaranteed between workers.
func (s *PerformanceSuite) runConcurrencyCheck(ctx context.Context, col *Collector, coll *mongo.Collection) {
	col.Run("Concurrent Operations", func() (string, error) {
		workers := s.cfg.Workers
		if workers <= 0 {
			workers = 1
		}
		opsPerWorker := s.cfg.OpsPerWorker
		if opsPerWorker <= 0 {
			opsPerWorker = 1
		}

		start := time.Now()
		g, gctx := errgroup.WithContext(ctx)
		for w := 0; w < workers; w++ {
			workerID := w
			g.Go(func() error {
				rng := rand.New(rand.NewSource(int64(workerID)))
				for i := 0; i < opsPerWorker; i++ {
					switch rng.Intn(3) {
					case 0:
						doc := bson.M{
							"worker_id":     workerID,
							"operation_num": i,
							"data":          fmt.Sprintf("Worker %d - Operation %d", workerID, i),
							"timestamp":     time.Now(),
						}
						if _, err := coll.InsertOne(gctx, doc); err != nil {
							return fmt.Errorf("worker %d insert: %w", workerID, err)
						}
					case 1:
						var doc bson.M
						err := coll.FindOne(gctx, bson.M{"worker_id": workerID}).Decode(&doc)
						if err != nil && err != mongo.ErrNoDocuments {
							return fmt.Errorf("worker %d find: %w", workerID, err)
						}
					default:
						_, err := coll.UpdateOne(gctx,
							bson.M{"worker_id": workerID},
							bson.M{"$set": bson.M{"last_updated": time.Now()}})
						if err != nil {
							return fmt.Errorf("worker %d update: %w", workerID, err)
						}
					}
				}
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return "", err
		}
		elapsed := time.Since(start)

		totalOps := workers * opsPerWorker
		rate := Throughput(totalOps, elapsed)
		col.SetMetric("concurrent_workers", float64(workers))
		col.SetMetric("concurrent_total_operations", float64(totalOps))
		col.SetMetric("concurrent_total_seconds", elapsed.Seconds())
		col.SetMetric("concurrent_ops_per_second", rate)

		return fmt.Sprintf("%d workers x %d mixed operations at %.2f ops/s", workers, opsPerWorker, rate), nil
	})
}

func (s *PerformanceSuite) runAggregationChecks(ctx context.Context, col *Collector, coll *mongo.Collection) {
	col.Run("Aggregation Performance", func() (string, error) {
		pipelines := []struct {
			name     string
			pipeline mongo.Pipeline
		}{
			{
				name: "department_averages",
				pipeline: mongo.Pipeline{
					{{Key: "$group", Value: bson.M{
						"_id":        "$department",
						"avg_salary": bson.M{"$avg": "$salary"},
						"count":      bson.M{"$sum": 1},
					}}},
				},
			},
			{
				name: "age_buckets",
				pipeline: mongo.Pipeline{
					{{Key: "$match", Value: bson.M{"age": bson.M{"$gte": 25}}}},
					{{Key: "$group", Value: bson.M{
						"_id": bson.M{
							"department": "$department",
							"age_group": bson.M{"$switch": bson.M{
								"branches": bson.A{
									bson.M{"case": bson.M{"$lt": bson.A{"$age", 30}}, "then": "25-29"},
									bson.M{"case": bson.M{"$lt": bson.A{"$age", 40}}, "then": "30-39"},
									bson.M{"case": bson.M{"$lt": bson.A{"$age", 50}}, "then": "40-49"},
								},
								"default": "50+",
							}},
						},
						"avg_salary": bson.M{"$avg": "$salary"},
						"count":      bson.M{"$sum": 1},
					}}},
					{{Key: "$sort", Value: bson.D{
						{Key: "_id.department", Value: 1},
						{Key: "_id.age_group", Value: 1},
					}}},
				},
			},
		}

		for _, p := range pipelines {
			start := time.Now()
			cursor, err := coll.Aggregate(ctx, p.pipeline)
			if err != nil {
				return "", fmt.Errorf("pipeline %s: %w", p.name, err)
			}
			var out []bson.M
			if err := cursor.All(ctx, &out); err != nil {
				return "", fmt.Errorf("pipeline %s: %w", p.name, err)
			}
			elapsed := time.Since(start)
			col.SetMetric("aggregation_"+p.name+"_seconds", elapsed.Seconds())
			col.SetMetric("aggregation_"+p.name+"_groups", float64(len(out)))
		}
		return fmt.Sprintf("%d aggregation pipelines executed", len(pipelines)), nil
	})
}
