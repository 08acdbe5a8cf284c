package submission

import "github.com/tidwall/gjson"

func parseSuccessFixture(raw string, fields Fields) Success {
	return newSuccess(gjson.Parse(raw), fields)
}
