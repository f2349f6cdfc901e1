package browser

import (
	"context"
	"fmt"
	"strconv"
	"strings"
)

// AnySelectorJS builds a JS expression reporting whether any of the given
// selectors currently matches an element on the page.
func AnySelectorJS(selectors []string) string {
	return fmt.Sprintf(
		`%s.some(s => { try { return document.querySelector(s) !== null; } catch { return false; } })`,
		jsArray(selectors))
}

// FirstAttrJS builds a JS expression returning the named attribute of the
// first element matched by the selector chain, or the empty string.
func FirstAttrJS(selectors []string, attr string) string {
	return fmt.Sprintf(`(() => {
	for (const s of %s) {
		let el = null;
		try { el = document.querySelector(s); } catch { continue; }
		if (el) {
			const v = el.getAttribute(%s);
			if (v) return v;
		}
	}
	return "";
})()`, jsArray(selectors), strconv.Quote(attr))
}

func jsArray(items []string) string {
	quoted := make([]string, len(items))
	for i, s := range items {
		quoted[i] = strconv.Quote(s)
	}
	return "[" + strings.Join(quoted, ", ") + "]"
}

// PropagateCancel cancels a tab context when the caller's context is done
// first. Tab contexts descend from the shared browser context, not from the
// caller, so cancellation has to be bridged explicitly.
func PropagateCancel(ctx, tab context.Context, cancel context.CancelFunc) {
	if ctx == nil || ctx.Done() == nil {
		return
	}
	go func() {
		select {
		case <-ctx.Done():
			cancel()
		case <-tab.Done():
		}
	}()
}
