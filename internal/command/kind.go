package command

// Kind is the tagged command kind an annotation block dispatches to.
type Kind uint8

const (
	KindNone Kind = iota
	KindAddToList
	KindAliasPlus
	KindInvokeAliasPlus
)

// Builtin lists the command names in Kind order (index 0 is KindAddToList).
var Builtin = []string{
	"ADD_TO_LIST",
	"ALIAS_PLUS",
	"INVOKE_ALIAS_PLUS",
}

func (k Kind) String() string {
	if k == KindNone || int(k) > len(Builtin) {
		return "NONE"
	}
	return Builtin[k-1]
}
