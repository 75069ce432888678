package engine

import (
	"github.com/dmrpanel/dmrctl/internal/api/models"
	"github.com/pkg/errors"
	"gopkg.in/ini.v1"
)

// BackupSection is the INI section holding the radio settings.
const BackupSection = "dmr"

// ParseBackup reads the [dmr] section of a config.ini backup. Missing keys
// take the engine defaults.
func ParseBackup(data []byte) (*models.EngineConfig, error) {
	file, err := ini.Load(data)
	if err != nil {
		return nil, errors.Wrapf(ErrMalformedResponse, "%s: %v", BackupPath, err)
	}

	def := models.DefaultEngineConfig()
	section := file.Section(BackupSection)
	return &models.EngineConfig{
		Callsign:  section.Key("callsign").MustString(def.Callsign),
		DMRID:     section.Key("dmr_id").MustInt(def.DMRID),
		Frequency: section.Key("frequency").MustFloat64(def.Frequency),
		Timeslot:  section.Key("timeslot").MustInt(def.Timeslot),
		ColorCode: section.Key("color_code").MustInt(def.ColorCode),
	}, nil
}
