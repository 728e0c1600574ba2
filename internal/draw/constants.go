package draw

// Slot names used by the default packet layout
const (
	SlotCommon   = "common"
	SlotUncommon = "uncommon"
	SlotRare     = "rare"
	SlotExtra    = "extra"
)

// AssetExtensions are the file types picked up when scanning asset directories
var AssetExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
	".webp": true,
}

// Log messages
const (
	LogMsgAssetPoolsLoaded = "Card asset pools loaded"
	LogMsgConfigDefect     = "Draw configuration defect"
	LogMsgPacketDrawn      = "Packet drawn"
	LogMsgExtraSlotSkipped = "Extra slot coin flip failed"
)
