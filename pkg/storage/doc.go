// Package storage provides the durable backends datasets are written to.
//
// A Backend reads and writes whole objects by key:
//   - FileBackend writes a synced temporary file and renames it over the target
//   - S3Backend puts objects into a bucket through the AWS SDK
//
// Open selects the backend from a location string, so s3://bucket/matches.json
// and ./matches.json are both valid dataset paths.
package storage
