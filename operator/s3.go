package operator

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	awss3 "github.com/aws/aws-sdk-go/service/s3"
	"github.com/bmatcuk/doublestar/v4"
	"github.com/floedb/floe/gologger"
	"github.com/floedb/floe/utils"
	s3source "github.com/xitongsys/parquet-go-source/s3"
	pqsource "github.com/xitongsys/parquet-go/source"
)

var logger = gologger.NewLogger()

// S3 opens objects in a single bucket. Locations and patterns are object
// keys.
type S3 struct {
	bucket string
	cfg    *aws.Config
	client *awss3.S3
}

func NewS3(bucket string) (*S3, error) {
	cfg := &aws.Config{
		Region:      aws.String(utils.AWS_DEFAULT_REGION),
		Credentials: credentials.NewEnvCredentials(),
	}
	if utils.S3_ENDPOINT != "" {
		cfg.Endpoint = aws.String(utils.S3_ENDPOINT)
	}

	sess, err := session.NewSession(cfg)
	if err != nil {
		return nil, fmt.Errorf("error making new session: %w", err)
	}

	return &S3{
		bucket: bucket,
		cfg:    cfg,
		client: awss3.New(sess),
	}, nil
}

func (s *S3) Name() string {
	return "s3"
}

func (s *S3) Open(ctx context.Context, location string) (pqsource.ParquetFile, error) {
	f, err := s3source.NewS3FileReader(ctx, s.bucket, location, s.cfg)
	if err != nil {
		return nil, fmt.Errorf("error in NewS3FileReader: %w", err)
	}
	return f, nil
}

func (s *S3) Glob(ctx context.Context, pattern string) ([]string, error) {
	var matches []string
	input := &awss3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(globPrefix(pattern)),
	}
	var matchErr error
	err := s.client.ListObjectsV2PagesWithContext(ctx, input, func(page *awss3.ListObjectsV2Output, _ bool) bool {
		for _, obj := range page.Contents {
			ok, err := doublestar.Match(pattern, *obj.Key)
			if err != nil {
				matchErr = fmt.Errorf("error in doublestar.Match for %q: %w", pattern, err)
				return false
			}
			if ok {
				matches = append(matches, *obj.Key)
			}
		}
		return true
	})
	if matchErr != nil {
		return nil, matchErr
	}
	if err != nil {
		return nil, fmt.Errorf("error listing objects for pattern %q: %w", pattern, err)
	}
	logger.Debug().Str("bucket", s.bucket).Str("pattern", pattern).Int("matches", len(matches)).Msg("expanded s3 glob")
	sort.Strings(matches)
	return matches, nil
}

// globPrefix is the literal key prefix before the first glob metacharacter,
// used to narrow the object listing.
func globPrefix(pattern string) string {
	if i := strings.IndexAny(pattern, "*?[{"); i >= 0 {
		return pattern[:i]
	}
	return pattern
}
