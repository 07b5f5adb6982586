package notify

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
	"github.com/matheus3301/jobboard/internal/apperr"
	"github.com/matheus3301/jobboard/internal/store"
)

const charset = "UTF-8"

// SESAPI is the part of the SES client the email channel uses.
type SESAPI interface {
	SendEmail(ctx context.Context, in *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

// EmailChannel sends notifications through Amazon SES.
type EmailChannel struct {
	client    SESAPI
	sender    string
	publicURL string
}

// NewSESChannel loads the default AWS credential chain for region.
func NewSESChannel(ctx context.Context, region, sender, publicURL string) (*EmailChannel, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return NewEmailChannel(ses.NewFromConfig(cfg), sender, publicURL), nil
}

// NewEmailChannel wraps an existing client. Links are made absolute against
// publicURL when it is set.
func NewEmailChannel(client SESAPI, sender, publicURL string) *EmailChannel {
	return &EmailChannel{client: client, sender: sender, publicURL: strings.TrimRight(publicURL, "/")}
}

func (c *EmailChannel) Deliver(ctx context.Context, n store.Notification, to Recipient) error {
	if to.Email == "" {
		return ErrNoRecipient
	}
	_, err := c.client.SendEmail(ctx, &ses.SendEmailInput{
		Source:      aws.String(c.sender),
		Destination: &types.Destination{ToAddresses: []string{to.Email}},
		Message: &types.Message{
			Subject: &types.Content{Data: aws.String(n.Title), Charset: aws.String(charset)},
			Body: &types.Body{
				Text: &types.Content{Data: aws.String(c.body(n, to)), Charset: aws.String(charset)},
			},
		},
	})
	if err != nil {
		return apperr.Unavailable("ses send email", err)
	}
	return nil
}

func (c *EmailChannel) body(n store.Notification, to Recipient) string {
	var b strings.Builder
	if to.Name != "" {
		fmt.Fprintf(&b, "Hi %s,\n\n", to.Name)
	}
	b.WriteString(n.Body)
	if n.Link != "" {
		b.WriteString("\n\n")
		b.WriteString(c.publicURL)
		b.WriteString(n.Link)
	}
	b.WriteString("\n")
	return b.String()
}
