package engine

// State is the lifecycle position of an Engine's target.
type State int

const (
	Uninitialized State = iota
	PathSet
	PathInvalid
	FilesPresent
	RecipeResolved
	Patched
)

func (s State) String() string {
	switch s {
	case Uninitialized:
		return "未初始化"
	case PathSet:
		return "已设置路径"
	case PathInvalid:
		return "路径无效"
	case FilesPresent:
		return "文件就绪"
	case RecipeResolved:
		return "已匹配补丁"
	case Patched:
		return "已打补丁"
	default:
		return "未知"
	}
}
