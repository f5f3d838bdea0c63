package user

type Permission string

const (
	// Self Management
	PermissionViewOwnProfile Permission = "profile.view_own"
	PermissionEditOwnProfile Permission = "profile.edit_own"

	// Name and email without approval
	PermissionEditProfileDirect Permission = "profile.edit_direct"

	// Leave Management
	PermissionLeaveViewOwn     Permission = "leave.view_own"
	PermissionLeaveCreate      Permission = "leave.create"
	PermissionLeaveViewAll     Permission = "leave.view_all"
	PermissionLeaveApprove     Permission = "leave.approve"
	PermissionLeaveManageTypes Permission = "leave.manage_types"
	PermissionLeaveManage      Permission = "leave.manage_balances"

	// Attendance Management
	PermissionAttendanceViewOwn Permission = "attendance.view_own"
	PermissionAttendanceCreate  Permission = "attendance.create"
	PermissionAttendanceViewAll Permission = "attendance.view_all"
	PermissionAttendanceApprove Permission = "attendance.approve"
	PermissionAttendanceManage  Permission = "attendance.manage"

	// Comp-off
	PermissionCompOffViewOwn Permission = "compoff.view_own"
	PermissionCompOffManage  Permission = "compoff.manage"

	// Employee Management
	PermissionEmployeeViewAll Permission = "employee.view_all"
	PermissionEmployeeManage  Permission = "employee.manage"

	// Reports
	PermissionReportsView Permission = "reports.view"

	// Batch jobs
	PermissionBatchRun Permission = "batch.run"

	// Activity log
	PermissionActivityView Permission = "activity.view"
)

// RolePermissions maps roles to their permissions. Admin also inherits
// everything granted to employee.
var RolePermissions = map[Role][]Permission{
	RoleAdmin: {
		PermissionEditProfileDirect,
		PermissionLeaveViewAll,
		PermissionLeaveApprove,
		PermissionLeaveManageTypes,
		PermissionLeaveManage,
		PermissionAttendanceViewAll,
		PermissionAttendanceApprove,
		PermissionAttendanceManage,
		PermissionCompOffManage,
		PermissionEmployeeViewAll,
		PermissionEmployeeManage,
		PermissionReportsView,
		PermissionBatchRun,
		PermissionActivityView,
	},
	RoleEmployee: {
		PermissionViewOwnProfile,
		PermissionEditOwnProfile,
		PermissionLeaveViewOwn,
		PermissionLeaveCreate,
		PermissionAttendanceViewOwn,
		PermissionAttendanceCreate,
		PermissionCompOffViewOwn,
	},
}

// RoleParents lists role inheritance.
var RoleParents = map[Role][]Role{
	RoleAdmin: {RoleEmployee},
}

// HasPermission checks if a role has a specific permission
func HasPermission(role Role, permission Permission) bool {
	for _, p := range RolePermissions[role] {
		if p == permission {
			return true
		}
	}
	for _, parent := range RoleParents[role] {
		if HasPermission(parent, permission) {
			return true
		}
	}
	return false
}
