package cache

import (
	"context"
	"fmt"
	"time"

	"TubeFM/logger"

	"github.com/redis/go-redis/v9"
)

// Cover art images are identical across concurrent conversions of the same
// item, so fetched bytes are kept for a while. Misses and a nil client both
// mean "fetch it yourself"; the cache never fails a conversion.

func coverKey(videoID string) string {
	return fmt.Sprintf("cover:%s", videoID)
}

// GetCover returns cached cover art bytes for a video, if present.
func GetCover(ctx context.Context, videoID string) ([]byte, bool) {
	if RedisClient == nil {
		return nil, false
	}

	data, err := RedisClient.Get(ctx, coverKey(videoID)).Bytes()
	if err != nil {
		if err != redis.Nil {
			logger.Warn("cover cache read failed",
				logger.String("videoId", videoID),
				logger.ErrorField(err))
		}
		return nil, false
	}
	return data, true
}

// SetCover stores cover art bytes with the given TTL. Best effort.
func SetCover(ctx context.Context, videoID string, data []byte, ttl time.Duration) {
	if RedisClient == nil || len(data) == 0 {
		return
	}

	if err := RedisClient.Set(ctx, coverKey(videoID), data, ttl).Err(); err != nil {
		logger.Warn("cover cache write failed",
			logger.String("videoId", videoID),
			logger.ErrorField(err))
	}
}
