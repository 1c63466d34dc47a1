package entitlement

// Feature is a named, plan-gated capability of a workspace.
type Feature string

const (
	FeatureAuditLog      Feature = "AUDIT_LOG"
	FeatureProjectLimits Feature = "PROJECT_LIMITS"
	FeatureMemberLimits  Feature = "MEMBER_LIMITS"
	FeatureTaskLimits    Feature = "TASK_LIMITS"
	FeatureStorageLimits Feature = "STORAGE_LIMITS"
)

func (f Feature) IsValid() bool {
	switch f {
	case FeatureAuditLog, FeatureProjectLimits, FeatureMemberLimits, FeatureTaskLimits, FeatureStorageLimits:
		return true
	}
	return false
}

// Category groups features for plan editing UIs and reporting.
type Category string

const (
	CategoryGovernance Category = "GOVERNANCE"
	CategoryQuota      Category = "QUOTA"
)

// Timing is advisory metadata describing where in the request lifecycle a
// feature conceptually belongs. The dispatcher does not enforce it.
type Timing string

const (
	TimingValidate Timing = "VALIDATE"
	TimingPre      Timing = "PRE"
	TimingPost     Timing = "POST"
	TimingAsync    Timing = "ASYNC"
)

func (f Feature) Category() Category {
	switch f {
	case FeatureAuditLog:
		return CategoryGovernance
	default:
		return CategoryQuota
	}
}

func (f Feature) DefaultTiming() Timing {
	switch f {
	case FeatureAuditLog:
		return TimingPost
	default:
		return TimingValidate
	}
}

// LimitType is a named numeric ceiling derived from the workspace plan.
type LimitType string

const (
	LimitMaxProjects        LimitType = "MAX_PROJECTS"
	LimitMaxMembers         LimitType = "MAX_MEMBERS"
	LimitMaxStorageMB       LimitType = "MAX_STORAGE_MB"
	LimitMaxTasksPerProject LimitType = "MAX_TASKS_PER_PROJECT"
)

func (l LimitType) IsValid() bool {
	switch l {
	case LimitMaxProjects, LimitMaxMembers, LimitMaxStorageMB, LimitMaxTasksPerProject:
		return true
	}
	return false
}

// Unlimited is the sentinel limit value meaning "no ceiling". Only an
// explicit plan row may carry it; missing data resolves to 0, never -1.
const Unlimited = -1

// WouldExceed reports whether an operation that adds one more unit of usage
// must be blocked. At-limit blocks: usage == limit means the next create is
// one too many.
func WouldExceed(limit, currentUsage int) bool {
	return limit >= 0 && currentUsage >= limit
}
