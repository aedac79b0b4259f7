package aws

import (
	"context"
	"log"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sns"
)

func GetSNSClient() *sns.Client {
	cfg, err := config.LoadDefaultConfig(context.TODO())
	if err != nil {
		log.Printf("Error loading default config: %s\n", err.Error())
		return nil
	}
	return sns.NewFromConfig(cfg)
}

// SNSPublishSMS delivers a direct-to-phone text message.
func SNSPublishSMS(phoneNumber string, message string) error {
	c := GetSNSClient()
	if c == nil {
		return nil
	}
	out, err := c.Publish(context.TODO(), &sns.PublishInput{
		PhoneNumber: aws.String(phoneNumber),
		Message:     aws.String(message),
	})
	if err != nil {
		log.Printf("Error publishing SMS to %s: %s\n", phoneNumber, err.Error())
		return err
	}
	log.Printf("Published SMS with id: %s\n", *out.MessageId)
	return nil
}
