// Package aws fetches the EC2 instance inventory that lsi lists and
// connects to.
package aws

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	ec2types "github.com/aws/aws-sdk-go-v2/service/ec2/types"

	"github.com/lsi-dev/lsi/hosts"
)

// Provider lists running EC2 instances using the AWS SDK.
type Provider struct {
	client ec2.DescribeInstancesAPIClient
	region string
}

// New creates a Provider using the default AWS credential chain.
func New(ctx context.Context, region string) (*Provider, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return &Provider{
		client: ec2.NewFromConfig(cfg),
		region: region,
	}, nil
}

// NewWithClient creates a Provider with an explicit EC2 client.
func NewWithClient(client ec2.DescribeInstancesAPIClient, region string) *Provider {
	return &Provider{client: client, region: region}
}

// Region returns the AWS region the provider queries.
func (p *Provider) Region() string {
	return p.region
}

// FetchRunningInstances lists all running instances in the region as
// host entries.
func (p *Provider) FetchRunningInstances(ctx context.Context) ([]hosts.Entry, error) {
	input := &ec2.DescribeInstancesInput{
		Filters: []ec2types.Filter{
			{Name: aws.String("instance-state-name"), Values: []string{"running"}},
		},
	}

	var entries []hosts.Entry
	paginator := ec2.NewDescribeInstancesPaginator(p.client, input)
	for paginator.HasMorePages() {
		output, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to describe instances: %w", err)
		}
		for _, reservation := range output.Reservations {
			for _, instance := range reservation.Instances {
				entries = append(entries, convertInstance(instance))
			}
		}
	}
	return entries, nil
}

// LookupHost returns the public DNS name of the running instance whose
// Name tag equals name.
func (p *Provider) LookupHost(ctx context.Context, name string) (string, error) {
	input := &ec2.DescribeInstancesInput{
		Filters: []ec2types.Filter{
			{Name: aws.String("instance-state-name"), Values: []string{"running"}},
			{Name: aws.String("tag:Name"), Values: []string{name}},
		},
	}
	output, err := p.client.DescribeInstances(ctx, input)
	if err != nil {
		return "", fmt.Errorf("failed to describe instances: %w", err)
	}
	for _, reservation := range output.Reservations {
		for _, instance := range reservation.Instances {
			return aws.ToString(instance.PublicDnsName), nil
		}
	}
	return "", fmt.Errorf("host %q not found", name)
}

// convertInstance maps an EC2 instance to a host entry.
func convertInstance(instance ec2types.Instance) hosts.Entry {
	rawTags := make(map[string]string, len(instance.Tags))
	for _, tag := range instance.Tags {
		rawTags[aws.ToString(tag.Key)] = aws.ToString(tag.Value)
	}

	tags := make(map[string]string, len(rawTags))
	for k, v := range rawTags {
		tags[strings.ToLower(k)] = v
	}

	groups := make([]string, 0, len(instance.SecurityGroups))
	for _, g := range instance.SecurityGroups {
		groups = append(groups, aws.ToString(g.GroupName))
	}

	return hosts.Entry{
		Name:           rawTags["Name"],
		InstanceID:     aws.ToString(instance.InstanceId),
		InstanceType:   string(instance.InstanceType),
		Hostname:       aws.ToString(instance.PublicDnsName),
		PrivateIP:      aws.ToString(instance.PrivateIpAddress),
		PublicIP:       aws.ToString(instance.PublicIpAddress),
		StackName:      rawTags["aws:cloudformation:stack-name"],
		StackID:        rawTags["aws:cloudformation:stack-id"],
		LogicalID:      rawTags["aws:cloudformation:logical-id"],
		SecurityGroups: groups,
		AMIID:          aws.ToString(instance.ImageId),
		LaunchTime:     safeTime(instance.LaunchTime),
		Tags:           tags,
	}
}

func safeTime(t *time.Time) time.Time {
	if t == nil {
		return time.Time{}
	}
	return *t
}
