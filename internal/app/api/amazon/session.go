// Package amazon adapts the AWS managed services used by the pipeline: Transcribe,
// Translate, Polly, Step Functions and S3.
package amazon

import (
	"fmt"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/polly"
	"github.com/aws/aws-sdk-go/service/polly/pollyiface"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/aws/aws-sdk-go/service/sfn"
	"github.com/aws/aws-sdk-go/service/sfn/sfniface"
	"github.com/aws/aws-sdk-go/service/transcribeservice"
	"github.com/aws/aws-sdk-go/service/transcribeservice/transcribeserviceiface"
	"github.com/aws/aws-sdk-go/service/translate"
	"github.com/aws/aws-sdk-go/service/translate/translateiface"
)

// Clients bundles the service clients built from one session.
type Clients struct {
	Transcribe transcribeserviceiface.TranscribeServiceAPI
	Translate  translateiface.TranslateAPI
	Polly      pollyiface.PollyAPI
	SFN        sfniface.SFNAPI
	S3         s3iface.S3API
}

// NewSession creates an AWS session. Credentials come from the default chain: environment,
// shared config, then the instance role. An empty region defers to AWS_REGION or the
// shared config.
func NewSession(region string) (*session.Session, error) {
	cfg := aws.NewConfig()
	if region != "" {
		cfg = cfg.WithRegion(region)
	}
	sess, err := session.NewSessionWithOptions(session.Options{
		Config:            *cfg,
		SharedConfigState: session.SharedConfigEnable,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS session: %w", err)
	}
	if aws.StringValue(sess.Config.Region) == "" {
		return nil, fmt.Errorf("no AWS region configured; set AWS_REGION")
	}
	return sess, nil
}

// NewClients builds every service client from sess.
func NewClients(sess *session.Session) *Clients {
	return &Clients{
		Transcribe: transcribeservice.New(sess),
		Translate:  translate.New(sess),
		Polly:      polly.New(sess),
		SFN:        sfn.New(sess),
		S3:         s3.New(sess),
	}
}
