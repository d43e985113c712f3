// Package theme holds the window colours, including the grid guide colour.
package theme

import (
	"image/color"
)

// Theme defines the colour palette for the drawing window.
type Theme struct {
	Name string

	Background color.RGBA // behind the canvas
	Foreground color.RGBA // labels

	ToolbarBackground color.RGBA
	ButtonBackground  color.RGBA
	ButtonActive      color.RGBA // selected tool, colour or width
	ButtonText        color.RGBA
	ButtonBorder      color.RGBA

	CanvasBorder color.RGBA
	GridLine     color.RGBA

	// Panel strip along the bottom of the window.
	PanelSlot       color.RGBA
	PanelSlotBorder color.RGBA

	MessageInfo  color.RGBA
	MessageWarn  color.RGBA
	MessageError color.RGBA
}

// Default returns the built-in light theme.
func Default() *Theme {
	return &Theme{
		Name:              "light",
		Background:        color.RGBA{236, 238, 242, 255},
		Foreground:        color.RGBA{20, 20, 24, 255},
		ToolbarBackground: color.RGBA{222, 225, 232, 255},
		ButtonBackground:  color.RGBA{204, 208, 216, 255},
		ButtonActive:      color.RGBA{140, 180, 240, 255},
		ButtonText:        color.RGBA{20, 20, 24, 255},
		ButtonBorder:      color.RGBA{90, 94, 104, 255},
		CanvasBorder:      color.RGBA{120, 124, 134, 255},
		GridLine:          color.RGBA{220, 224, 232, 255},
		PanelSlot:         color.RGBA{248, 248, 250, 255},
		PanelSlotBorder:   color.RGBA{160, 164, 174, 255},
		MessageInfo:       color.RGBA{30, 90, 170, 255},
		MessageWarn:       color.RGBA{176, 110, 0, 255},
		MessageError:      color.RGBA{184, 30, 30, 255},
	}
}
