package model

// InstanceState represents EC2 instance lifecycle states.
type InstanceState string

const (
	InstanceStateRunning    InstanceState = "running"
	InstanceStateStopped    InstanceState = "stopped"
	InstanceStatePending    InstanceState = "pending"
	InstanceStateTerminated InstanceState = "terminated"
)

// EC2Instance describes a compute instance and its estimated monthly cost.
type EC2Instance struct {
	InstanceID   string        `json:"instance_id"`
	InstanceType string        `json:"instance_type"`
	State        InstanceState `json:"state"`
	Name         string        `json:"name"`
	MonthlyCost  float64       `json:"monthly_cost"`
	Tags         Tags          `json:"tags,omitempty"`
}

// StorageVolume describes an EBS volume.
type StorageVolume struct {
	VolumeID         string  `json:"volume_id"`
	SizeGB           int32   `json:"size_gb"`
	VolumeType       string  `json:"volume_type"`
	MonthlyCost      float64 `json:"monthly_cost"`
	AttachedInstance string  `json:"attached_instance,omitempty"`
}

// ResourceInventory groups the discovered billable resources.
type ResourceInventory struct {
	Instances []EC2Instance   `json:"instances"`
	Volumes   []StorageVolume `json:"volumes"`
}

// RunningMonthlyCost sums the monthly cost of running instances and volumes.
func (inv ResourceInventory) RunningMonthlyCost() float64 {
	var total float64
	for _, i := range inv.Instances {
		if i.State == InstanceStateRunning {
			total += i.MonthlyCost
		}
	}
	for _, v := range inv.Volumes {
		total += v.MonthlyCost
	}
	return total
}
