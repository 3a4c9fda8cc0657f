package db

var IsRetryable = isRetryable

var ConnectionString = connectionString
