package controllerImp

import (
	"bytes"
	"encoding/json"

	"agrisense/pkg/catalog/service"
)

type stagesReq []service.StageInput

func (s *stagesReq) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '{' {
		var one service.StageInput
		if err := json.Unmarshal(b, &one); err != nil {
			return err
		}
		*s = stagesReq{one}
		return nil
	}
	var many []service.StageInput
	if err := json.Unmarshal(b, &many); err != nil {
		return err
	}
	*s = many
	return nil
}
