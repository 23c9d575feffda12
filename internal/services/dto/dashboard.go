package dto

type EmployerStats struct {
	JobsByStatus         map[string]int64 `json:"jobsByStatus"`
	ApplicationsByStatus map[string]int64 `json:"applicationsByStatus"`
	TotalJobs            int64            `json:"totalJobs"`
	TotalApplications    int64            `json:"totalApplications"`
	TotalViews           int64            `json:"totalViews"`
}

type AdminStats struct {
	UsersByRole       map[string]int64 `json:"usersByRole"`
	JobsByStatus      map[string]int64 `json:"jobsByStatus"`
	TotalApplications int64            `json:"totalApplications"`
	Subscribers       int64            `json:"subscribers"`
	ActiveSubscribers int64            `json:"activeSubscribers"`
	OnlineUsers       int64            `json:"onlineUsers"`
}
