package utils

import "os"

var (
	AWS_ACCESS_KEY_ID     = os.Getenv("AWS_ACCESS_KEY_ID")
	AWS_SECRET_ACCESS_KEY = os.Getenv("AWS_SECRET_ACCESS_KEY")
	AWS_DEFAULT_REGION    = GetEnvOrDefault("AWS_DEFAULT_REGION", "us-east-1")

	S3_BUCKET_NAME = os.Getenv("FLOE_S3_BUCKET")
	S3_ENDPOINT    = os.Getenv("FLOE_S3_ENDPOINT")

	// FS_ROOT is where the local operator anchors relative glob patterns,
	// matching the table function's "arbitrary filesystem access" behavior.
	FS_ROOT = GetEnvOrDefault("FLOE_FS_ROOT", "/")

	ALLOW_INSECURE = os.Getenv("FLOE_ALLOW_INSECURE") == "1"
)
