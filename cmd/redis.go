package cmd

import (
	"fmt"
	"log"

	"TubeFM/cache"
	"TubeFM/config"

	"github.com/spf13/cobra"
)

var redisCmd = &cobra.Command{
	Use:   "redis",
	Short: "Redis connectivity self-test",
	Long:  `Connect to the configured Redis instance and run a basic set/get/del round trip.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg := config.Load()
		if cfg.RedisHost == "" {
			log.Fatal("REDIS_HOST is not configured; nothing to test")
		}
		fmt.Printf("Redis target: %s:%s, DB: %d\n", cfg.RedisHost, cfg.RedisPort, cfg.RedisDB)

		if err := cache.ConnectRedis(cfg); err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		fmt.Println("Redis connection established.")

		if err := cache.TestRedis(); err != nil {
			log.Fatalf("Redis round trip failed: %v", err)
		}
		fmt.Println("Redis round trip succeeded.")

		if err := cache.CloseRedis(); err != nil {
			log.Printf("Error closing Redis connection: %v", err)
		}
		fmt.Println("Redis test complete, connection closed.")
	},
}

func init() {
	rootCmd.AddCommand(redisCmd)
}
