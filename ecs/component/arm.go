package component

import "github.com/milk9111/armsim/object"

// Role names the part of a segment an entity stands for.
type Role int

const (
	RoleBase Role = iota + 1
	RoleLink
	RoleMotor
	RoleJoint
)

func (r Role) String() string {
	switch r {
	case RoleBase:
		return "base"
	case RoleLink:
		return "link"
	case RoleMotor:
		return "motor"
	case RoleJoint:
		return "joint"
	default:
		return "unknown"
	}
}

// Body marks an entity that owns a built rigid body.
type Body struct {
	*object.Body
}

var BodyComponent = NewComponent[Body]()

// Joint marks an entity that owns a joint.
type Joint struct {
	*object.Joint
}

var JointComponent = NewComponent[Joint]()

// Part places an entity in the assembly. Segment is -1 for the base.
type Part struct {
	Segment int
	Role    Role
}

var PartComponent = NewComponent[Part]()
