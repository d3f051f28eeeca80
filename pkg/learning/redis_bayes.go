package learning

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/hamlet-ml/hamlet/pkg/config"
	"github.com/hamlet-ml/hamlet/pkg/features"
)

// RedisModel is a multinomial naive Bayes classifier backed by Redis.
// Bucket counts live in one hash per label, so several processes can
// train and classify against the same model concurrently. It uses the
// same smoothing formula as the file-backed Model, so both backends
// agree on any given message.
type RedisModel struct {
	client     *redis.Client
	ctx        context.Context
	config     *Config
	redisCfg   *RedisConfig
	vectorizer *features.Vectorizer
}

// RedisConfig holds Redis backend configuration
type RedisConfig struct {
	// Redis connection
	RedisURL    string `json:"redis_url" yaml:"redis_url"`
	KeyPrefix   string `json:"key_prefix" yaml:"key_prefix"`
	DatabaseNum int    `json:"database_num" yaml:"database_num"`

	// Minimum trained documents per class before SpamProbability
	// reports anything other than neutral
	MinLearns int `json:"min_learns" yaml:"min_learns"`

	// Key expiration (0 = no expiry)
	TokenTTL time.Duration `json:"token_ttl" yaml:"token_ttl"`

	// Pipeline batch size
	BatchSize int `json:"batch_size" yaml:"batch_size"`
}

// DefaultRedisConfig returns default Redis backend configuration
func DefaultRedisConfig() *RedisConfig {
	return &RedisConfig{
		RedisURL:    "redis://localhost:6379",
		KeyPrefix:   "hamlet:bayes",
		DatabaseNum: 0,
		MinLearns:   1,
		TokenTTL:    0,
		BatchSize:   100,
	}
}

// RedisConfigFromBackend converts the YAML backend section, parsing the
// TTL duration string.
func RedisConfigFromBackend(cfg *config.RedisBackendConfig) (*RedisConfig, error) {
	out := &RedisConfig{
		RedisURL:    cfg.RedisURL,
		KeyPrefix:   cfg.KeyPrefix,
		DatabaseNum: cfg.DatabaseNum,
		MinLearns:   cfg.MinLearns,
		BatchSize:   cfg.BatchSize,
	}

	if cfg.TokenTTL != "" {
		ttl, err := time.ParseDuration(cfg.TokenTTL)
		if err != nil {
			return nil, fmt.Errorf("invalid token_ttl: %v", err)
		}
		out.TokenTTL = ttl
	}

	return out, nil
}

// NewRedisModel creates a Redis-backed classifier
func NewRedisModel(featConfig config.FeaturesConfig, cfg *Config, redisCfg *RedisConfig) (*RedisModel, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if redisCfg == nil {
		redisCfg = DefaultRedisConfig()
	}
	if redisCfg.BatchSize < 1 {
		redisCfg.BatchSize = DefaultRedisConfig().BatchSize
	}

	// Parse Redis URL
	opt, err := redis.ParseURL(redisCfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid Redis URL: %v", err)
	}

	opt.DB = redisCfg.DatabaseNum
	client := redis.NewClient(opt)

	// Test connection
	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("Redis connection failed: %v", err)
	}

	return &RedisModel{
		client:     client,
		ctx:        ctx,
		config:     cfg,
		redisCfg:   redisCfg,
		vectorizer: features.NewVectorizer(&featConfig),
	}, nil
}

// Train accumulates one labeled message into Redis
func (rm *RedisModel) Train(label, text string) error {
	if label == "" {
		return fmt.Errorf("label cannot be empty")
	}

	vec := rm.vectorizer.Vector(text)

	pipe := rm.client.Pipeline()

	countsKey := rm.countsKey(label)
	tokens := 0

	for bucket, count := range vec {
		pipe.HIncrBy(rm.ctx, countsKey, bucketField(bucket), int64(count))
		tokens += count
	}

	pipe.SAdd(rm.ctx, rm.labelsKey(), label)
	pipe.HIncrBy(rm.ctx, rm.metaKey(), "docs:"+label, 1)
	pipe.HIncrBy(rm.ctx, rm.metaKey(), "total:"+label, int64(tokens))
	pipe.HSet(rm.ctx, rm.metaKey(), "last_trained", time.Now().Unix())

	if rm.redisCfg.TokenTTL > 0 {
		pipe.Expire(rm.ctx, countsKey, rm.redisCfg.TokenTTL)
		pipe.Expire(rm.ctx, rm.metaKey(), rm.redisCfg.TokenTTL)
		pipe.Expire(rm.ctx, rm.labelsKey(), rm.redisCfg.TokenTTL)
	}

	if _, err := pipe.Exec(rm.ctx); err != nil {
		return fmt.Errorf("training failed: %v", err)
	}

	return nil
}

// Classify returns the posterior distribution over labels for text
func (rm *RedisModel) Classify(text string) (*Prediction, error) {
	labels, err := rm.client.SMembers(rm.ctx, rm.labelsKey()).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to load labels: %v", err)
	}
	if len(labels) == 0 {
		return nil, fmt.Errorf("model has no training data")
	}

	meta, err := rm.client.HGetAll(rm.ctx, rm.metaKey()).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to load model stats: %v", err)
	}

	vec := rm.vectorizer.Vector(text)

	fields := make([]string, 0, len(vec))
	buckets := make([]uint32, 0, len(vec))
	for bucket := range vec {
		fields = append(fields, bucketField(bucket))
		buckets = append(buckets, bucket)
	}

	// Fetch only the buckets present in the message, one HMGET per label
	pipe := rm.client.Pipeline()
	countCmds := make(map[string]*redis.SliceCmd, len(labels))
	for _, label := range labels {
		if len(fields) > 0 {
			countCmds[label] = pipe.HMGet(rm.ctx, rm.countsKey(label), fields...)
		}
	}
	if _, err := pipe.Exec(rm.ctx); err != nil && err != redis.Nil {
		return nil, fmt.Errorf("failed to load bucket counts: %v", err)
	}

	totalDocs := 0
	docs := make(map[string]int, len(labels))
	for _, label := range labels {
		docs[label], _ = strconv.Atoi(meta["docs:"+label])
		totalDocs += docs[label]
	}
	if totalDocs == 0 {
		return nil, fmt.Errorf("model has no training data")
	}

	dims := float64(rm.vectorizer.Dims())
	logJoint := make(map[string]float64, len(labels))

	for _, label := range labels {
		score := math.Log(float64(docs[label]) / float64(totalDocs))

		total, _ := strconv.ParseFloat(meta["total:"+label], 64)
		denom := total + rm.config.Alpha*dims

		if cmd, ok := countCmds[label]; ok {
			values := cmd.Val()
			for i, raw := range values {
				var count float64
				if s, ok := raw.(string); ok {
					count, _ = strconv.ParseFloat(s, 64)
				}
				prob := (count + rm.config.Alpha) / denom
				score += float64(vec[buckets[i]]) * math.Log(prob)
			}
		}

		logJoint[label] = score
	}

	return newPrediction(logJoint), nil
}

// SpamProbability returns the posterior of the positive label for text.
// Until every label has at least MinLearns trained documents the result
// is a neutral 0.5.
func (rm *RedisModel) SpamProbability(text string) (float64, error) {
	if len(rm.vectorizer.Tokenize(text)) == 0 {
		return 0.5, nil
	}

	info, err := rm.Info()
	if err != nil {
		return 0.5, err
	}

	for _, label := range info.Labels {
		if info.Docs[label] < rm.redisCfg.MinLearns {
			return 0.5, nil
		}
	}

	pred, err := rm.Classify(text)
	if err != nil {
		return 0.5, err
	}

	return pred.Probabilities[rm.config.PositiveLabel], nil
}

// Info returns information about the trained model
func (rm *RedisModel) Info() (*ModelInfo, error) {
	labels, err := rm.client.SMembers(rm.ctx, rm.labelsKey()).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to load labels: %v", err)
	}

	meta, err := rm.client.HGetAll(rm.ctx, rm.metaKey()).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to load model stats: %v", err)
	}

	info := &ModelInfo{
		Docs:        make(map[string]int, len(labels)),
		TokenTotals: make(map[string]int, len(labels)),
		Dims:        rm.vectorizer.Dims(),
		Alpha:       rm.config.Alpha,
	}

	sort.Strings(labels)

	buckets := 0
	for _, label := range labels {
		info.Labels = append(info.Labels, label)
		info.Docs[label], _ = strconv.Atoi(meta["docs:"+label])
		info.TokenTotals[label], _ = strconv.Atoi(meta["total:"+label])

		n, err := rm.client.HLen(rm.ctx, rm.countsKey(label)).Result()
		if err != nil {
			return nil, fmt.Errorf("failed to load bucket counts: %v", err)
		}
		buckets += int(n)
	}
	info.DistinctBuckets = buckets

	if ts, err := strconv.ParseInt(meta["last_trained"], 10, 64); err == nil {
		info.LastTrained = time.Unix(ts, 0)
	}

	return info, nil
}

// Reset clears all training data for this key prefix. Keys are found by
// SCAN rather than the labels set, so stale keys under the prefix are
// cleaned up too, and deleted in pipelined batches of BatchSize.
func (rm *RedisModel) Reset() error {
	pattern := rm.redisCfg.KeyPrefix + ":*"
	iter := rm.client.Scan(rm.ctx, 0, pattern, int64(rm.redisCfg.BatchSize)).Iterator()

	pipe := rm.client.Pipeline()
	count := 0

	for iter.Next(rm.ctx) {
		pipe.Del(rm.ctx, iter.Val())
		count++

		// Execute in batches
		if count >= rm.redisCfg.BatchSize {
			if _, err := pipe.Exec(rm.ctx); err != nil {
				return fmt.Errorf("reset failed: %v", err)
			}
			pipe = rm.client.Pipeline()
			count = 0
		}
	}

	if err := iter.Err(); err != nil {
		return fmt.Errorf("reset scan failed: %v", err)
	}

	if count > 0 {
		if _, err := pipe.Exec(rm.ctx); err != nil {
			return fmt.Errorf("reset failed: %v", err)
		}
	}

	return nil
}

// Close closes the Redis connection
func (rm *RedisModel) Close() error {
	return rm.client.Close()
}

// Key helpers
func (rm *RedisModel) countsKey(label string) string {
	return fmt.Sprintf("%s:counts:%s", rm.redisCfg.KeyPrefix, label)
}

func (rm *RedisModel) metaKey() string {
	return fmt.Sprintf("%s:meta", rm.redisCfg.KeyPrefix)
}

func (rm *RedisModel) labelsKey() string {
	return fmt.Sprintf("%s:labels", rm.redisCfg.KeyPrefix)
}

func bucketField(bucket uint32) string {
	return strconv.FormatUint(uint64(bucket), 10)
}
