package config

// Example usage of the configuration system:
//
// 1. Load configuration with all sources:
//
//     cfg, err := config.Load("", nil)
//     if err != nil {
//         log.Fatal(err)
//     }
//
// 2. Load with command line flags:
//
//     flags := map[string]interface{}{
//         "cookie":    "ttwid=...",
//         "output":    "./catalog",
//         "txt":       false,
//         "log-level": "debug",
//     }
//     cfg, err := config.Load("", flags)
//
// 3. Environment variables (also read from .env):
//
//     export DYSCRAPER_COOKIE="ttwid=..."
//     export DYSCRAPER_OUTPUT_DIR="./catalog"
//     export DYSCRAPER_RETRY_DELAY="3s"
//     export DYSCRAPER_PAGE_DELAY="1500ms"
//     export DYSCRAPER_REQUESTS_PER_MINUTE="30"
//
// 4. Config file (dyscraper.yaml):
//
//     douyin:
//       accept_language: vi
//       page_size: 20
//     retry:
//       max_attempts: 5
//       delay: 2s
//     pagination:
//       page_delay: 1s
//     output:
//       directory: ./downloads
//       json: true
//       txt: true
//       timestamped: true
