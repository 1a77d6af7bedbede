package rod

// TestHTML templates for testing
const (
	FormHTML = `<!DOCTYPE html>
<html>
<body>
	<form id="testForm">
		<input id="username" type="text" name="username" value="alice" />
		<input id="password" type="password" name="password" />
		<input id="agree" type="checkbox" />
		<input id="locked" type="text" readonly />
		<button id="submit" type="submit" disabled>Submit</button>
	</form>
</body>
</html>`

	InteractiveHTML = `<!DOCTYPE html>
<html>
<body>
	<button id="btn">Click Me</button>
	<div id="result"></div>
	<script>
		document.getElementById('btn').addEventListener('click', function() {
			document.getElementById('result').textContent = 'Clicked!';
		});
	</script>
</body>
</html>`

	NestedHTML = `<!DOCTYPE html>
<html>
<body>
	<div id="outer" class="box">
		<ul id="list">
			<li class="item a">one</li>
			<li class="item b" style="display:none">two</li>
			<li class="item c">three</li>
		</ul>
	</div>
</body>
</html>`
)
