package storage

import (
	"github.com/google/wire"
)

// StorageSet is a Wire provider set that includes all storage-related providers
var StorageSet = wire.NewSet(
	NewMySQLClient,
	NewMysqlInstanceStorage,
	NewMysqlProjectStorage,
	NewMysqlSuiteStorage,
	NewMysqlRunStorage,
	NewRedisClient,
	NewRedisSuiteStorageImpl,
	NewRedisWindowCounterImpl,
)
