package dashboard

// DashboardResponse is the combined response for the admin dashboard endpoint
type DashboardResponse struct {
	Date              string `json:"date"`
	TotalEmployees    int64  `json:"total_employees"`
	PresentToday      int64  `json:"present_today"`
	HalfDayToday      int64  `json:"half_day_today"`
	AbsentToday       int64  `json:"absent_today"`
	OnLeaveToday      int64  `json:"on_leave_today"`
	LateToday         int64  `json:"late_today"`
	WFHToday          int64  `json:"wfh_today"`
	NotMarkedToday    int64  `json:"not_marked_today"`
	PendingLeaves     int64  `json:"pending_leaves"`
	PendingRegularize int64  `json:"pending_regularizations"`
	PendingWFH        int64  `json:"pending_wfh"`
	ApprovedToday     int64  `json:"leaves_approved_today"`
	LeavesThisMonth   int64  `json:"leaves_this_month"`
}
