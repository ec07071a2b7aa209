package typeadapter

import "go.uber.org/zap"

// SkipUnknownField logs an unrecognized wire field at warn level and
// returns, matching the rest of the adapter's policy of never failing a
// block's ingestion over a single unexpected field.
func SkipUnknownField(logger *zap.Logger, field string, value any) {
	if logger == nil {
		return
	}
	logger.Warn("skipping unknown field", zap.String("field", field), zap.Any("value", value))
}
