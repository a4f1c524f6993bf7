package aws

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/service/ec2"
	ec2types "github.com/aws/aws-sdk-go-v2/service/ec2/types"

	"github.com/vismaya/demandops/internal/model"
)

// Rough on-demand monthly estimates. Accurate pricing would come from the
// Pricing API; these are close enough for dashboard totals.
var instanceMonthlyCost = map[string]float64{
	"t3.nano":    3.80,
	"t3.micro":   7.60,
	"t3.small":   15.20,
	"t3.medium":  30.40,
	"t3.large":   60.80,
	"t3.xlarge":  121.60,
	"t3.2xlarge": 243.20,
	"m5.large":   70.08,
	"m5.xlarge":  140.16,
	"m5.2xlarge": 280.32,
	"c5.large":   62.56,
	"c5.xlarge":  125.12,
	"r5.large":   91.25,
	"r5.xlarge":  182.50,
}

const defaultInstanceMonthlyCost = 50.0

// Per GB-month EBS rates.
var volumeCostPerGB = map[string]float64{
	"gp2": 0.10,
	"gp3": 0.08,
	"io1": 0.125,
	"io2": 0.125,
	"st1": 0.045,
	"sc1": 0.025,
}

const defaultVolumeCostPerGB = 0.10

// Resources returns the account's EC2 instances and EBS volumes with
// estimated monthly costs. Stopped instances cost nothing.
func (p *Provider) Resources(ctx context.Context) (*model.ResourceInventory, error) {
	instances, err := p.describeInstances(ctx)
	if err != nil {
		return nil, err
	}
	volumes, err := p.describeVolumes(ctx)
	if err != nil {
		return nil, err
	}
	return &model.ResourceInventory{
		Instances: instances,
		Volumes:   volumes,
	}, nil
}

func (p *Provider) describeInstances(ctx context.Context) ([]model.EC2Instance, error) {
	var instances []model.EC2Instance

	paginator := ec2.NewDescribeInstancesPaginator(p.ec2, &ec2.DescribeInstancesInput{})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to describe instances: %w", err)
		}
		for _, reservation := range page.Reservations {
			for _, instance := range reservation.Instances {
				instances = append(instances, toInstance(instance))
			}
		}
	}

	p.tracker.TrackEC2Call("DescribeInstances", len(instances))
	return instances, nil
}

func toInstance(instance ec2types.Instance) model.EC2Instance {
	out := model.EC2Instance{
		Tags: make(model.Tags),
	}
	if instance.InstanceId != nil {
		out.InstanceID = *instance.InstanceId
	}
	out.InstanceType = string(instance.InstanceType)
	if instance.State != nil {
		out.State = model.InstanceState(instance.State.Name)
	}
	for _, tag := range instance.Tags {
		if tag.Key == nil || tag.Value == nil {
			continue
		}
		out.Tags[*tag.Key] = *tag.Value
		if *tag.Key == "Name" {
			out.Name = *tag.Value
		}
	}
	if out.State == model.InstanceStateRunning {
		out.MonthlyCost = estimateInstanceCost(out.InstanceType)
	}
	return out
}

func (p *Provider) describeVolumes(ctx context.Context) ([]model.StorageVolume, error) {
	var volumes []model.StorageVolume

	paginator := ec2.NewDescribeVolumesPaginator(p.ec2, &ec2.DescribeVolumesInput{})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to describe volumes: %w", err)
		}
		for _, volume := range page.Volumes {
			v := model.StorageVolume{
				VolumeType: string(volume.VolumeType),
			}
			if volume.VolumeId != nil {
				v.VolumeID = *volume.VolumeId
			}
			if volume.Size != nil {
				v.SizeGB = *volume.Size
			}
			if len(volume.Attachments) > 0 && volume.Attachments[0].InstanceId != nil {
				v.AttachedInstance = *volume.Attachments[0].InstanceId
			}
			v.MonthlyCost = estimateVolumeCost(v.SizeGB, v.VolumeType)
			volumes = append(volumes, v)
		}
	}

	p.tracker.TrackEC2Call("DescribeVolumes", len(volumes))
	return volumes, nil
}

// StopInstances stops the given instances.
func (p *Provider) StopInstances(ctx context.Context, instanceIDs []string) error {
	if len(instanceIDs) == 0 {
		return nil
	}

	p.logger.Warn("stopping instances for budget enforcement", "instance_ids", instanceIDs)
	p.tracker.TrackEC2Call("StopInstances", len(instanceIDs))

	_, err := p.ec2.StopInstances(ctx, &ec2.StopInstancesInput{
		InstanceIds: instanceIDs,
	})
	if err != nil {
		return fmt.Errorf("failed to stop instances: %w", err)
	}
	return nil
}

func estimateInstanceCost(instanceType string) float64 {
	if cost, ok := instanceMonthlyCost[instanceType]; ok {
		return cost
	}
	return defaultInstanceMonthlyCost
}

func estimateVolumeCost(sizeGB int32, volumeType string) float64 {
	rate, ok := volumeCostPerGB[volumeType]
	if !ok {
		rate = defaultVolumeCostPerGB
	}
	return float64(sizeGB) * rate
}
