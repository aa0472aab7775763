package speech

import (
	"net/url"
	"strconv"
)

const baiduEndpoint = "http://tts.baidu.com/text2audio"

// BaiduSpeed is the default playback speed passed to the Baidu endpoint.
const BaiduSpeed = 5

// BaiduURL builds a link to Baidu's public text-to-speech endpoint. lan is the
// spoken language in the endpoint's own code set (for example "zh" or "EN").
func BaiduURL(lan, text string) string {
	q := url.Values{}
	q.Set("lan", lan)
	q.Set("ie", "UTF-8")
	q.Set("spd", strconv.Itoa(BaiduSpeed))
	q.Set("text", text)
	return baiduEndpoint + "?" + q.Encode()
}
