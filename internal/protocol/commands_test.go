package protocol

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookupCommand(t *testing.T) {
	tests := []struct {
		name string
		want CommandCode
	}{
		{"CMD_WRITE_SSID", 0x11},
		{"CMD_BROADCAST", 0x12},
		{"CMD_READ_ECOWITT", 0x1E},
		{"CMD_READ_SATION_MAC", 0x26},
		{"CMD_GW1000_LIVEDATA", 0x27},
		{"CMD_GET_MulCH_OFFSET", 0x2C},
		{"CMD_READ_SENSOR_ID", 0x3A},
		{"CMD_READ_SENSOR_ID_NEW", 0x3C},
		{"CMD_WRITE_UPDATE", 0x43},
		{"CMD_READ_FIRMWARE_VERSION", 0x50},
		{"CMD_SET_CO2_OFFSET", 0x54},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := LookupCommand(tt.name)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.name, got.Name())
			assert.True(t, got.Known())
		})
	}
}

func TestLookupCommand_Unknown(t *testing.T) {
	_, err := LookupCommand("CMD_READ_STATION_MAC")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownCommand))
	assert.False(t, errors.Is(err, ErrInvalidChecksum))
	assert.Contains(t, err.Error(), "CMD_READ_STATION_MAC")
}

func TestCommands(t *testing.T) {
	cmds := Commands()
	require.Len(t, cmds, 39)

	for i := 1; i < len(cmds); i++ {
		assert.Less(t, byte(cmds[i-1].Code), byte(cmds[i].Code))
	}
	assert.Equal(t, Command{Name: "CMD_WRITE_SSID", Code: CmdWriteSSID}, cmds[0])
	assert.Equal(t, Command{Name: "CMD_SET_CO2_OFFSET", Code: CmdSetCO2Offset}, cmds[len(cmds)-1])
}

func TestCommandCode_String(t *testing.T) {
	assert.Equal(t, "CMD_GW1000_LIVEDATA(0x27)", CmdLiveData.String())
	assert.Equal(t, "Unknown(0x99)", CommandCode(0x99).String())
	assert.Equal(t, "", CommandCode(0x99).Name())
	assert.False(t, CommandCode(0x99).Known())
}

func TestCommandCode_SizeWidth(t *testing.T) {
	wide := map[CommandCode]bool{
		CmdBroadcast:       true,
		CmdLiveData:        true,
		CmdReadSensorIDNew: true,
	}
	for _, cmd := range Commands() {
		want := 1
		if wide[cmd.Code] {
			want = 2
		}
		assert.Equal(t, want, cmd.Code.SizeWidth(), cmd.Name)
	}
}
