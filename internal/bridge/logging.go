package bridge

import "echo-console/internal/logger"

var log = logger.Named("bridge")
