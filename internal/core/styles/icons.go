package styles

// Tip: To find icons use https://github.com/loichyan/nerdfix

var (
	IconBell      = "\uf0f3"
	IconBellSlash = "\uf1f6"
	IconLink      = "\uf0c1"
	IconUnread    = "\u25cf"
	IconRead      = "\u25cb"
)
