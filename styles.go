package main

import (
	"ens-lookup/styles"
)

// -------------------- THEME (Lip Gloss) --------------------
// Styles now come from the styles package

var (
	cAccent = styles.CAccent
	cBorder = styles.CBorder
	cError  = styles.CError

	appStyle   = styles.AppStyle
	panelStyle = styles.PanelStyle
)
