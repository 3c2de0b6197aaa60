package sim

import "time"

// CommandType enumerates the commands a client can stage for the next tick.
type CommandType string

const (
	CommandInput             CommandType = "Input"
	CommandSelectPassive     CommandType = "SelectPassive"
	CommandConfirmPassive    CommandType = "ConfirmPassive"
	CommandSelectBossReward  CommandType = "SelectBossReward"
	CommandConfirmBossReward CommandType = "ConfirmBossReward"
	CommandBuyShopItem       CommandType = "BuyShopItem"
	CommandToggleShopLock    CommandType = "ToggleShopLock"
	CommandRefreshShop       CommandType = "RefreshShop"
	CommandPause             CommandType = "Pause"
	CommandResume            CommandType = "Resume"
	CommandNewGame           CommandType = "NewGame"
	CommandResize            CommandType = "Resize"
)

// ResizeCommand carries new viewport dimensions.
type ResizeCommand struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Command represents an intent captured for processing on the next tick.
type Command struct {
	OriginTick uint64         `json:"originTick"`
	Type       CommandType    `json:"type"`
	IssuedAt   time.Time      `json:"issuedAt"`
	Input      *Input         `json:"input,omitempty"`
	Ref        string         `json:"ref,omitempty"`
	Slot       int            `json:"slot,omitempty"`
	Seed       string         `json:"seed,omitempty"`
	Resize     *ResizeCommand `json:"resize,omitempty"`
}
