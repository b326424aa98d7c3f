package runtime

import "github.com/aretw0/dyntext/pkg/domain"

// appendNextToken extends proxy with the next n characters of base.
// An absent proxy becomes the token itself (possibly empty).
func appendNextToken(base, proxy domain.Text, n int) domain.Text {
	if base.IsNone() {
		return proxy
	}
	b := base.Runes()
	offset := min(proxy.RuneLen(), len(b))
	take := min(len(b)-offset, n)
	return domain.Some(proxy.String() + string(b[offset:offset+take]))
}

// prependNextToken extends proxy with the n characters of base that precede it.
func prependNextToken(base, proxy domain.Text, n int) domain.Text {
	if base.IsNone() {
		return proxy
	}
	b := base.Runes()
	end := max(len(b)-proxy.RuneLen(), 0)
	start := end - min(end, n)
	return domain.Some(string(b[start:end]) + proxy.String())
}

// removeLastToken drops up to n characters from the tail of proxy.
func removeLastToken(proxy domain.Text, n int) domain.Text {
	if proxy.IsNone() {
		return proxy
	}
	p := proxy.Runes()
	return domain.Some(string(p[:len(p)-min(len(p), n)]))
}
